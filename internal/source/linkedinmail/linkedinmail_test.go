package linkedinmail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertHTML = `
<html><body>
<table>
  <tr><td>
    <a href="https://www.linkedin.com/comm/jobs/view/4012345678/?trk=eml">
      <img src="logo.png" alt="Acme"/>
    </a>
  </td></tr>
  <tr><td>
    <a href="https://www.linkedin.com/comm/jobs/view/4012345678/?trk=eml">Engenheiro de Dados Pleno</a>
    <p>Acme Tecnologia · São Paulo, São Paulo</p>
  </td></tr>
</table>
<table>
  <tr><td>
    <a href="https://www.linkedin.com/comm/jobs/view/4099999999/?trk=eml">Analista de Marketing</a>
    <p>Outra Empresa · Campinas, São Paulo</p>
  </td></tr>
</table>
<a href="https://www.linkedin.com/settings">Gerenciar alertas</a>
</body></html>`

func TestParseAlertHTML(t *testing.T) {
	jobs, err := parseAlertHTML(alertHTML)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	eng, ok := jobs["4012345678"]
	require.True(t, ok)
	// The logo anchor and the text anchor collapse into one job, keeping
	// the text title.
	assert.Equal(t, "Engenheiro de Dados Pleno", eng.Role)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/4012345678", eng.URL)
	assert.Equal(t, "Acme Tecnologia", eng.Company)
	assert.Equal(t, "São Paulo", eng.City)
	assert.Equal(t, "SP", eng.State)

	mkt, ok := jobs["4099999999"]
	require.True(t, ok)
	assert.Equal(t, "Analista de Marketing", mkt.Role)
	assert.Equal(t, "Outra Empresa", mkt.Company)
}

func TestParseAlertHTML_IgnoresNonJobLinks(t *testing.T) {
	jobs, err := parseAlertHTML(`<html><body>
		<a href="https://www.linkedin.com/settings">Configurações</a>
		<a href="https://example.com/jobs/view/123">fora do linkedin</a>
	</body></html>`)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestExtractHTML_MultipartQuotedPrintable(t *testing.T) {
	raw := []byte("From: jobalerts-noreply@linkedin.com\r\n" +
		"Subject: 3 novas vagas\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"xyz\"\r\n" +
		"\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"versao texto\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"<html><body><a href=3D\"https://www.linkedin.com/jobs/view/42/\">Vaga</a></body></html>\r\n" +
		"--xyz--\r\n")

	html, err := extractHTML(raw)
	require.NoError(t, err)
	assert.Contains(t, html, `href="https://www.linkedin.com/jobs/view/42/"`)
}

func TestExtractHTML_NoHTMLPart(t *testing.T) {
	raw := []byte("From: a@b\r\nContent-Type: text/plain\r\n\r\nso texto\r\n")
	_, err := extractHTML(raw)
	require.Error(t, err)
}
