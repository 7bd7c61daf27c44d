package notification

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	invoiceText  = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/invoice.txt.tmpl"))
	invoiceHTML  = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/invoice.html.tmpl"))
	reminderText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/reminder.txt.tmpl"))
)

type invoiceMail struct {
	CompanyName string
	Number      string
	Total       string
	DueDate     string
}

type reminderMail struct {
	CompanyName  string
	Title        string
	Description  string
	CustomerName string
	DueDate      string
	DueTime      string
}

func renderInvoiceMail(data invoiceMail) (textBody, htmlBody string, err error) {
	var txt bytes.Buffer
	if err := invoiceText.Execute(&txt, data); err != nil {
		return "", "", err
	}
	var html bytes.Buffer
	if err := invoiceHTML.Execute(&html, data); err != nil {
		return "", "", err
	}
	return txt.String(), html.String(), nil
}

func renderReminderMail(data reminderMail) (string, error) {
	var txt bytes.Buffer
	if err := reminderText.Execute(&txt, data); err != nil {
		return "", err
	}
	return txt.String(), nil
}
