package chatapi

import (
	"errors"
	"fmt"
	"strconv"

	"cfguard-bot/internal/infra/chat"
	"cfguard-bot/internal/relay/usecases"
)

const (
	serverUnavailableMessage  = "Server unavailable: could not reach the backend"
	malformedResponseMessage  = "Server sent an unexpected response"
	nothingTrackedMessage     = "Nothing tracked yet"
	emptyReportMessage        = "Report is empty"
	degradedElapsedHeader     = "⚠ Server unavailable, minutes not computed. Tasks from the local log:"
	importPromptMessage       = "Send the file to import into %s (/cancel to abort)"
	importCancelledMessage    = "Import cancelled"
	noPendingImportMessage    = "No pending import"
	unparseableTimeMessage    = "Unparseable timestamp: %q"
	noProjectsMessage         = "No projects"
	noSnapshotsMessage        = "no snapshots"
	backendResetMessage       = "Backend reset"
	backendForcedResetMessage = "Backend reset (forced)"
)

// describeFailure turns backend failures into user facing text. It returns
// false for errors that are not about the backend. Rejections read as the
// backend being unavailable.
func describeFailure(err error) (string, bool) {
	switch {
	case errors.Is(err, usecases.ErrBackendUnavailable):
		return serverUnavailableMessage, true
	case errors.Is(err, usecases.ErrMalformedResponse):
		return malformedResponseMessage, true
	default:
		return "", false
	}
}

// describeRejection is describeFailure with the status code and body of a
// rejected call quoted verbatim.
func describeRejection(err error) (string, bool) {
	var statusErr *usecases.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("Server answered %d: %s", statusErr.StatusCode, statusErr.Body), true
	}
	return describeFailure(err)
}

func failureReply(err error) ([]chat.Reply, error) {
	if text, ok := describeFailure(err); ok {
		return []chat.Reply{chat.Text(text)}, nil
	}
	return nil, err
}

func rejectionReply(err error) ([]chat.Reply, error) {
	if text, ok := describeRejection(err); ok {
		return []chat.Reply{chat.Text(text)}, nil
	}
	return nil, err
}

func usage(syntax string) []chat.Reply {
	return []chat.Reply{chat.Text("Usage: " + syntax)}
}

// formatMinutes renders minutes like 12.5 or 0.0.
func formatMinutes(minutes float64) string {
	text := strconv.FormatFloat(minutes, 'f', -1, 64)
	for _, r := range text {
		if r == '.' || r == 'e' {
			return text
		}
	}
	return text + ".0"
}
