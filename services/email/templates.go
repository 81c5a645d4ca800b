package email

import (
	"fmt"
	"html"
	"time"
)

func passwordResetBody(appName, name, code string, validFor time.Duration) string {
	if name == "" {
		name = "there"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>%[1]s password reset</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #333; }
        .code { font-size: 28px; letter-spacing: 6px; font-weight: 700; }
    </style>
</head>
<body>
    <h2>%[1]s</h2>
    <p>Hello %[2]s,</p>
    <p>Use this code to reset your password:</p>
    <p class="code">%[3]s</p>
    <p>The code expires in %[4]d minutes. If you did not request a reset you can ignore this email.</p>
</body>
</html>`, html.EscapeString(appName), html.EscapeString(name), code, int(validFor.Minutes()))
}
