package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplateUnknown(t *testing.T) {
	_, err := renderTemplate("does_not_exist", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRenderCustomerConfirmation(t *testing.T) {
	body, err := renderTemplate("customer_confirmation", struct {
		Subject        string
		CustomerName   string
		CompanyName    string
		ReferenceCode  string
		GeneratedImage string
		Year           int
	}{
		Subject:        "Your renovation enquiry",
		CustomerName:   "Jane Doe",
		CompanyName:    "Demo Renovations Ltd",
		ReferenceCode:  "RV-ABCD1234",
		GeneratedImage: "https://example.com/uploads/after.png",
		Year:           time.Now().Year(),
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, "RV-ABCD1234")
	assert.Contains(t, body, "https://example.com/uploads/after.png")
}

func TestRenderCustomerConfirmationWithoutImage(t *testing.T) {
	body, err := renderTemplate("customer_confirmation", struct {
		Subject        string
		CustomerName   string
		CompanyName    string
		ReferenceCode  string
		GeneratedImage string
		Year           int
	}{
		CustomerName:  "Jane Doe",
		CompanyName:   "Demo Renovations Ltd",
		ReferenceCode: "RV-ABCD1234",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "renovation preview")
}

func TestRenderFollowUpTemplates(t *testing.T) {
	data := struct {
		Subject       string
		CustomerName  string
		CompanyName   string
		CompanyPhone  string
		ReferenceCode string
		Year          int
	}{
		CustomerName:  "Jane Doe",
		CompanyName:   "Demo Renovations Ltd",
		CompanyPhone:  "07700000001",
		ReferenceCode: "RV-ABCD1234",
	}

	for _, name := range []string{"follow_up_1", "follow_up_2", "follow_up_3"} {
		body, err := renderTemplate(name, data)
		require.NoError(t, err, name)
		assert.Contains(t, body, "RV-ABCD1234", name)
		assert.Contains(t, body, "Demo Renovations Ltd", name)
	}
}

func TestSendRejectsInvalidRecipient(t *testing.T) {
	m := &Mailer{host: "localhost", port: 25, fromEmail: "hello@renovision.app", fromName: "RenoVision"}

	err := m.Send(EmailData{
		Subject:  "test",
		To:       []string{"not-an-email"},
		Template: "follow_up_1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestSendRejectsEmptyRecipients(t *testing.T) {
	m := &Mailer{}
	err := m.Send(EmailData{Subject: "test", Template: "follow_up_1"})
	assert.Error(t, err)
}
