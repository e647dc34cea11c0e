package notification

import (
	"html/template"
)

// Template names used by callers.
const (
	TemplateEmailVerification = "emailVerification"
	TemplatePasswordReset     = "passwordReset"
	TemplatePaymentSuccess    = "paymentSuccess"
	TemplatePaymentFailed     = "paymentFailed"
	TemplateKYCDecision       = "kycDecision"
)

var templates = template.Must(template.New("emails").Parse(`
{{define "emailVerification"}}
<html><body style="font-family: sans-serif;">
<h2>Verify your email address</h2>
<p>Hi {{.Name}},</p>
<p>Please confirm your email to activate your account.</p>
<p><a href="{{.VerificationURL}}">Verify email</a></p>
<p>This link expires in 24 hours.</p>
</body></html>
{{end}}

{{define "passwordReset"}}
<html><body style="font-family: sans-serif;">
<h2>Reset your password</h2>
<p>Hi {{.Name}},</p>
<p><a href="{{.ResetURL}}">Click here to reset your password</a></p>
<p>This link expires in 1 hour. If you did not request this, ignore this email.</p>
</body></html>
{{end}}

{{define "paymentSuccess"}}
<html><body style="font-family: sans-serif;">
<h2>Payment Successful</h2>
<p>Hi {{.CustomerName}},</p>
<p>Your payment of {{.Amount}} {{.Currency}} was successful.</p>
<p><strong>Order:</strong> {{.OrderID}}</p>
<p><strong>Date:</strong> {{.Date}}</p>
</body></html>
{{end}}

{{define "paymentFailed"}}
<html><body style="font-family: sans-serif;">
<h2>Payment Failed</h2>
<p>Hi {{.CustomerName}},</p>
<p>Your payment of {{.Amount}} {{.Currency}} could not be processed.</p>
<p><strong>Order:</strong> {{.OrderID}}</p>
<p><strong>Reason:</strong> {{.Reason}}</p>
</body></html>
{{end}}

{{define "kycDecision"}}
<html><body style="font-family: sans-serif;">
<h2>KYC {{.Status}}</h2>
<p>Hi {{.Name}},</p>
<p>Your merchant verification is {{.Status}}.</p>
{{if .Reason}}<p><strong>Reason:</strong> {{.Reason}}</p>{{end}}
</body></html>
{{end}}
`))
