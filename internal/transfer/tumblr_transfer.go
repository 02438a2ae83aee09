package transfer

// NPF content blocks, the modern Tumblr post format.
// https://www.tumblr.com/docs/npf

type NPFBlock struct {
	Type        string      `json:"type"`
	Text        string      `json:"text,omitempty"`
	Subtype     string      `json:"subtype,omitempty"`
	Formatting  []NPFFormat `json:"formatting,omitempty"`
	Media       []NPFMedia  `json:"media,omitempty"`
	URL         string      `json:"url,omitempty"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
}

// NPFFormat marks a formatting range in code points, not bytes.
type NPFFormat struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
}

type NPFMedia struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

type TumblrPostRequest struct {
	Content []NPFBlock `json:"content"`
	Tags    string     `json:"tags,omitempty"`
	State   string     `json:"state,omitempty"`
}

type TumblrMeta struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

type TumblrPostResponse struct {
	Meta     TumblrMeta `json:"meta"`
	Response struct {
		IDString string `json:"id_string"`
		State    string `json:"state"`
	} `json:"response"`
}

type TumblrPostsResponse struct {
	Meta     TumblrMeta `json:"meta"`
	Response struct {
		Posts []struct {
			IDString  string `json:"id_string"`
			NoteCount int    `json:"note_count"`
			Notes     []struct {
				Type string `json:"type"`
			} `json:"notes"`
		} `json:"posts"`
	} `json:"response"`
}

type TumblrUserInfoResponse struct {
	Meta     TumblrMeta `json:"meta"`
	Response struct {
		User struct {
			Name  string `json:"name"`
			Blogs []struct {
				Name    string `json:"name"`
				Primary bool   `json:"primary"`
			} `json:"blogs"`
		} `json:"user"`
	} `json:"response"`
}

// TemporaryCredentials is the parsed request-token response plus the state
// value it is cached under while the user authorizes in the browser.
type TemporaryCredentials struct {
	Token             string `json:"token"`
	TokenSecret       string `json:"token_secret"`
	CallbackConfirmed bool   `json:"callback_confirmed"`
}

type AccessCredentials struct {
	Token       string `json:"token"`
	TokenSecret string `json:"token_secret"`
}
