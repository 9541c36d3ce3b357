// File: internal/email/email_test.go
package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReviewMessage(t *testing.T) {
	msg, err := ReviewMessage("ama@example.gh", UploadReview{
		Title:   "Q1 <Catch>",
		Country: "gh",
		Status:  "approved",
		FileURL: "https://files.example.org/q1.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ama@example.gh"}, msg.To)
	assert.Equal(t, "Upload approved: Q1 <Catch>", msg.Subject)
	assert.Contains(t, msg.Text, "has been approved")
	assert.Contains(t, msg.Text, "https://files.example.org/q1.pdf")
	assert.Contains(t, msg.HTML, "Q1 &lt;Catch&gt;")
}

func TestReviewMessage_Rejected(t *testing.T) {
	msg, err := ReviewMessage("ama@example.gh", UploadReview{Title: "Q1", Country: "gh", Status: "rejected", Reviewer: "admin@ecowas.int"})
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "rejected by admin@ecowas.int")
	assert.Contains(t, msg.Text, "corrected version")
}

func TestPendingDigestMessage(t *testing.T) {
	msg, err := PendingDigestMessage([]string{"a@ecowas.int", "b@ecowas.int"}, PendingDigest{Items: []PendingItem{
		{Title: "Q1 catch", Country: "Ghana", Uploader: "ama@example.gh", Waiting: "3 days"},
		{Title: "Legacy", Country: "Senegal", Waiting: "5 days"},
	}})
	require.NoError(t, err)

	assert.Len(t, msg.To, 2)
	assert.Equal(t, "2 upload(s) awaiting review", msg.Subject)
	assert.Contains(t, msg.Text, "- Q1 catch (Ghana) from ama@example.gh, waiting 3 days")
	assert.Contains(t, msg.Text, "Legacy (Senegal) from unknown uploader")
	assert.Contains(t, msg.HTML, "<li><strong>Legacy</strong>")
}

func TestConsoleSender(t *testing.T) {
	s := NewConsoleSender(mail.Address{Name: "Dashboard", Address: "no-reply@example.org"}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Send(ctx, Message{To: []string{"a@example.org"}, Subject: "hi", Text: "body"}))
	assert.ErrorIs(t, s.Send(ctx, Message{Subject: "nobody", Text: "body"}), ErrNoRecipients)
	assert.Error(t, s.Send(ctx, Message{To: []string{"not an address"}, Text: "body"}))
	assert.Error(t, s.Send(ctx, Message{To: []string{"a@example.org"}}))

	sent := s.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "hi", sent[0].Subject)
}

func TestSendGridSender_Send(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGridSender("sg-key", mail.Address{Name: "Dashboard", Address: "no-reply@example.org"}, zap.NewNop())
	s.host = srv.URL

	err := s.Send(context.Background(), Message{To: []string{"a@example.org"}, Subject: "hi", Text: "body"})
	require.NoError(t, err)

	from := got["from"].(map[string]interface{})
	assert.Equal(t, "no-reply@example.org", from["email"])
	personalizations := got["personalizations"].([]interface{})
	require.Len(t, personalizations, 1)
}

func TestSendGridSender_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	s := NewSendGridSender("bad", mail.Address{Address: "no-reply@example.org"}, zap.NewNop())
	s.host = srv.URL

	err := s.Send(context.Background(), Message{To: []string{"a@example.org"}, Subject: "hi", Text: "body"})
	assert.Error(t, err)
}
