package mailer

import (
	"bytes"
	"html/template"
)

// emailTmpl wraps the plain-text notification body in a minimal HTML
// shell. {{.Subject}} and {{.Body}} are auto-escaped by html/template.
var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1.0">
  <title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f4f4f5;
     font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" role="presentation"
         style="background-color:#f4f4f5;padding:32px 16px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" role="presentation"
               style="max-width:600px;width:100%;">
          <tr>
            <td style="background-color:#0b5d6b;padding:20px 32px;border-radius:8px 8px 0 0;">
              <span style="font-size:18px;font-weight:700;color:#ffffff;">MedSync</span>
              <span style="display:block;font-size:11px;color:#b8d8dd;margin-top:2px;">
                Notificações de Consulta
              </span>
            </td>
          </tr>
          <tr>
            <td style="background-color:#ffffff;padding:14px 32px;border-left:3px solid #0b5d6b;">
              <p style="margin:0;font-size:15px;font-weight:600;color:#1f2937;">{{.Subject}}</p>
            </td>
          </tr>
          <tr>
            <td style="background-color:#ffffff;padding:28px 32px;border-radius:0 0 8px 8px;">
              <div style="font-size:14px;line-height:1.7;color:#374151;
                          white-space:pre-wrap;word-break:break-word;">{{.Body}}</div>
            </td>
          </tr>
          <tr>
            <td style="padding:16px 32px;">
              <p style="margin:0;font-size:12px;color:#9ca3af;">
                Notificação automática do MedSync. Não responda este email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`))

// buildEmailHTML renders the HTML email wrapper for a subject and body.
func buildEmailHTML(subject, body string) (string, error) {
	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, struct{ Subject, Body string }{subject, body})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
