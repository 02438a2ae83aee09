package transfer

type PublishRequest struct {
	QuizID        int64  `json:"quiz_id"`
	ConnectionID  int64  `json:"connection_id"`
	CustomMessage string `json:"custom_message"`
}

// PublishResult is the uniform shape every publish returns, success or not.
type PublishResult struct {
	Success  bool   `json:"success"`
	PostID   string `json:"post_id,omitempty"`
	PostURL  string `json:"post_url,omitempty"`
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
	Platform string `json:"platform,omitempty"`
}

type SelectPageRequest struct {
	SelectionToken string `json:"selection_token"`
	PageID         string `json:"page_id"`
}

type PageOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SelectPageResponse is what the Facebook callback hands to the frontend so
// the user can pick which page the connection should post to.
type SelectPageResponse struct {
	SelectionToken string       `json:"selection_token"`
	Pages          []PageOption `json:"pages"`
}

type SyncRequest struct {
	PostID int64 `json:"post_id"`
}

type RemoveRequest struct {
	ID int64 `json:"id"`
}
