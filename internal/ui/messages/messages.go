package messages

import "github.com/fragmede/commentbox/internal/feed"

// View transition messages.
type (
	OpenComposeMsg struct{}
	GoBackMsg      struct{}
)

// Data messages.
type (
	// FeedResultMsg carries a finished request back to the event loop, where
	// it is settled into the list state.
	FeedResultMsg struct {
		Result feed.Result
	}

	SubmitCommentMsg struct {
		Name    string
		Content string
	}

	// ComposeResultMsg tells the compose form how its submission ended.
	ComposeResultMsg struct {
		Err error
	}

	PrefetchedMsg struct {
		Size  int
		Pages int
		Err   error
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}
)
