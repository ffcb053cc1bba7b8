package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studymatch/core"
	logsvc "github.com/trezcool/studymatch/services/logger"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := core.NewTestConfig()
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(conf, logger)
	svc := NewConsoleServiceMock(conf, logger)

	to := []mail.Address{{Name: "Ada", Address: "ada@uni.edu"}}
	tests := []struct {
		name     string
		msg      core.EmailMessage
		wantSent bool
	}{
		{name: "no recipient", msg: core.EmailMessage{Subject: "hi", BodyStr: "hello"}},
		{name: "no content", msg: core.EmailMessage{To: to, Subject: "hi"}},
		{name: "plain body", msg: core.EmailMessage{To: to, Subject: "hi", BodyStr: "hello"}, wantSent: true},
		{
			name: "template",
			msg: core.EmailMessage{
				To:           to,
				Subject:      "Session Confirmed",
				TemplateName: "notification",
				TemplateData: struct{ Name, Title, Message, Link string }{"Ada", "Session Confirmed", "confirmed", "/sessions"},
			},
			wantSent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.Reset()
			msg := tt.msg
			svc.SendMessages(&msg)

			sent := svc.SentMessages()
			if !tt.wantSent {
				assert.Empty(t, sent)
				return
			}
			require.Len(t, sent, 1)
			if tt.msg.TemplateName != "" {
				assert.Contains(t, sent[0].TextContent, "Ada")
				assert.Contains(t, sent[0].HTMLContent, "Session Confirmed")
			}
		})
	}
}
