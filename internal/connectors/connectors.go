package connectors

import "github.com/LUISRGUEZSOSA/licor-43---daily/internal"

// MailConnector pulls candidate daily-report messages from a mailbox.
// The subject needle narrows the fetch to report mail server-side where
// the protocol allows it.
type MailConnector interface {
	FetchReports(label, subjectNeedle string, max int) ([]internal.FetchedMailMessage, error)
}
