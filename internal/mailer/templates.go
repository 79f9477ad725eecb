package mailer

import (
	"strings"
	"time"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/shalom-church/portal/internal/domain"
)

const (
	churchName     = "Assembleia de Deus Shalom"
	churchLocation = "Parque Vitória - São Luís/MA"
	churchPostal   = "CEP: 65123-250"
	churchEmail    = "contato@igrejashalom.com.br"
	churchPhone    = "(98) 1234-5678"
)

const baseStyles = `
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: linear-gradient(135deg, #1e40af, #1e3a8a); color: white; padding: 30px; text-align: center; border-radius: 8px 8px 0 0; }
.content { background: #fff; padding: 30px; border: 1px solid #e5e7eb; }
.footer { background: #f9fafb; padding: 20px; text-align: center; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
.btn { display: inline-block; background: #1e40af; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; }
`

type notificationLayout struct {
	heading  string
	subject  string
	callout  string
	path     string
	button   string
	extraTag string
	extra    string
}

func layoutFor(event domain.NotificationEvent) notificationLayout {
	switch event.ContentType {
	case domain.ContentEvent:
		return notificationLayout{
			heading:  "📅 Novo Evento!",
			subject:  "📅 Novo Evento: ",
			callout:  "Não perca este evento especial em nossa igreja!",
			path:     "/eventos",
			button:   "Ver Eventos",
			extraTag: "Data:",
			extra:    formatEventDate(event.EventDate),
		}
	case domain.ContentBlog:
		return notificationLayout{
			heading:  "📖 Novo Artigo!",
			subject:  "📖 Novo Artigo: ",
			callout:  "Um novo artigo foi publicado em nosso blog. Confira agora!",
			path:     "/blog",
			button:   "Ler Artigo",
			extraTag: "Autor:",
			extra:    event.AuthorName,
		}
	case domain.ContentMinistry:
		return notificationLayout{
			heading: "🙏 Novo Ministério!",
			subject: "🙏 Novo Ministério: ",
			callout: "Um novo ministério foi criado em nossa igreja. Venha participar e servir!",
			path:    "/ministerios",
			button:  "Ver Ministérios",
		}
	case domain.ContentSermon:
		return notificationLayout{
			heading:  "🎙️ Novo Sermão!",
			subject:  "🎙️ Novo Sermão: ",
			callout:  "Um novo sermão está disponível. Ouça e seja edificado!",
			path:     "/sermoes",
			button:   "Ouvir Sermão",
			extraTag: "Pregador:",
			extra:    event.PreacherName,
		}
	default:
		return notificationLayout{
			heading: "🔔 Nova Notificação!",
			subject: "🔔 ",
			callout: "Confira as novidades em nosso site!",
			button:  "Visitar Site",
		}
	}
}

// NotificationSubject returns the subject line for a publication email.
func NotificationSubject(event domain.NotificationEvent) string {
	return layoutFor(event).subject + event.Title
}

// RenderNotification renders the publication email for the event's content type.
// Unknown content types get the generic template.
func RenderNotification(event domain.NotificationEvent, siteURL string) (string, error) {
	layout := layoutFor(event)

	page := h.Doctype(h.HTML(
		h.Head(
			h.Meta(h.Charset("utf-8")),
			h.StyleEl(g.Raw(baseStyles)),
		),
		h.Body(
			h.Div(h.Class("container"),
				h.Div(h.Class("header"), h.H1(g.Text(layout.heading))),
				h.Div(h.Class("content"),
					h.H2(g.Text(event.Title)),
					g.If(event.Description != "", h.P(g.Text(event.Description))),
					g.If(layout.extra != "", h.P(h.Strong(g.Text(layout.extraTag)), g.Text(" "+layout.extra))),
					h.P(g.Text(layout.callout)),
					h.A(h.Href(siteURL+layout.path), h.Class("btn"), g.Text(layout.button)),
				),
				h.Div(h.Class("footer"), h.P(g.Text(churchName+" Parque Vitória"))),
			),
		),
	))

	return render(page)
}

// RenderContactConfirmation renders the acknowledgement sent to the person who wrote in.
func RenderContactConfirmation(msg domain.ContactMessage) (string, error) {
	page := h.Div(h.Style("font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;"),
		h.Div(h.Style("text-align: center; margin-bottom: 30px;"),
			h.H1(h.Style("color: #1e40af; margin-bottom: 10px;"), g.Text(churchName)),
			h.P(h.Style("color: #666; margin: 0;"), g.Text(churchLocation)),
		),
		h.H2(h.Style("color: #333;"), g.Textf("Olá, %s!", msg.Name)),
		h.P(h.Style("color: #555; line-height: 1.6;"),
			g.Text("Recebemos sua mensagem e agradecemos por entrar em contato conosco. Nossa equipe analisará sua solicitação e retornaremos em breve."),
		),
		h.Div(h.Style("background-color: #f8fafc; padding: 20px; border-radius: 8px; margin: 20px 0;"),
			h.H3(h.Style("color: #333; margin-top: 0;"), g.Text("Resumo da sua mensagem:")),
			labeled("Assunto:", msg.Subject),
			labeled("Tipo:", msg.MessageType),
			labeled("Mensagem:", msg.Message),
		),
		h.Div(h.Style("background-color: #1e40af; color: white; padding: 20px; border-radius: 8px; margin: 20px 0;"),
			h.H3(h.Style("margin-top: 0; color: white;"), g.Text("Horários de Culto")),
			h.P(h.Style("margin: 5px 0;"), g.Text("📅 Domingo (Manhã): 8h00")),
			h.P(h.Style("margin: 5px 0;"), g.Text("📅 Domingo (Noite): 19h00")),
		),
		h.Div(h.Style("border-top: 1px solid #e5e7eb; padding-top: 20px; margin-top: 30px; text-align: center; color: #666;"),
			h.P(h.Strong(g.Text(churchName))),
			h.P(g.Text(churchLocation)),
			h.P(g.Text(churchPostal)),
			h.P(g.Text("📧 "+churchEmail)),
			h.P(g.Text("📞 "+churchPhone)),
		),
	)
	return render(page)
}

// RenderContactNotification renders the message forwarded to the church inbox.
func RenderContactNotification(msg domain.ContactMessage) (string, error) {
	page := h.Div(h.Style("font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;"),
		h.H2(h.Style("color: #1e40af;"), g.Text("Nova mensagem de contato recebida")),
		h.Div(h.Style("background-color: #f8fafc; padding: 20px; border-radius: 8px; margin: 20px 0;"),
			h.H3(h.Style("color: #333; margin-top: 0;"), g.Text("Dados do contato:")),
			labeled("Nome:", msg.Name),
			labeled("Email:", msg.Email),
			g.If(msg.Phone != "", labeled("Telefone:", msg.Phone)),
			labeled("Tipo de mensagem:", msg.MessageType),
			labeled("Assunto:", msg.Subject),
		),
		h.Div(h.Style("background-color: #fff; border: 1px solid #e5e7eb; padding: 20px; border-radius: 8px;"),
			h.H3(h.Style("color: #333; margin-top: 0;"), g.Text("Mensagem:")),
			h.P(h.Style("white-space: pre-wrap; line-height: 1.6;"), g.Text(msg.Message)),
		),
		h.P(h.Style("color: #666; margin-top: 20px; font-size: 14px;"),
			g.Text("Esta mensagem foi enviada através do formulário de contato do site."),
		),
	)
	return render(page)
}

// ContactConfirmationSubject is the subject of the acknowledgement email.
func ContactConfirmationSubject() string {
	return "Mensagem recebida - " + churchName
}

// ContactNotificationSubject is the subject of the inbox email.
func ContactNotificationSubject(msg domain.ContactMessage) string {
	return "Nova mensagem de contato: " + msg.Subject
}

func labeled(label, value string) g.Node {
	return h.P(h.Strong(g.Text(label)), g.Text(" "+value))
}

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// formatEventDate renders dates as dd/mm/yyyy, passing unparseable input through.
func formatEventDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return raw
}

func render(node g.Node) (string, error) {
	var b strings.Builder
	if err := node.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
