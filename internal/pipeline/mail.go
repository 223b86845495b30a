package pipeline

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"
)

// Attachment is one file pulled out of a report email.
type Attachment struct {
	Name    string
	Content []byte
}

var reportExtensions = map[string]bool{
	".xlsx": true, ".xlsm": true, ".xls": true,
	".csv": true, ".html": true, ".htm": true, ".pdf": true,
}

// ExtractReportAttachments parses a raw RFC 5322 message and returns the
// attachments with a loadable extension, plus the message subject.
func ExtractReportAttachments(raw []byte) ([]Attachment, string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, "", err
	}

	out := make([]Attachment, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		name := strings.TrimSpace(att.FileName)
		if name == "" {
			name = "attachment"
		}
		if !reportExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		out = append(out, Attachment{Name: name, Content: att.Content})
	}
	return out, env.GetHeader("Subject"), nil
}

// AttachmentNames lists every attachment filename for detection, whether
// or not the extension is loadable.
func AttachmentNames(raw []byte) []string {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		if n := strings.TrimSpace(att.FileName); n != "" {
			names = append(names, n)
		}
	}
	return names
}
