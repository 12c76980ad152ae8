package events

// Type names an event on the progress stream.
type Type string

const (
	TypeProgress   Type = "progress"
	TypeVideoInfo  Type = "videoInfo"
	TypeComments   Type = "comments"
	TypeTranslated Type = "translated"
	TypeComplete   Type = "complete"
	TypeError      Type = "error"
)

// Event is one line of the stream. Data holds the type-specific payload.
type Event struct {
	Type Type `json:"type"`
	Data any  `json:"data"`
}

// Terminal reports whether no further events may follow e.
func (e Event) Terminal() bool {
	switch e.Type {
	case TypeComplete:
		return true
	case TypeError:
		switch data := e.Data.(type) {
		case ErrorData:
			return data.Fatal
		case *ErrorData:
			return data != nil && data.Fatal
		}
		return true
	}
	return false
}

// Progress is the payload of a progress event.
type Progress struct {
	Stage      string  `json:"stage"`
	Percentage float64 `json:"percentage"`
	Current    int     `json:"current"`
	Total      int     `json:"total"`
}

// ErrorData is the payload of an error event. Non-fatal errors describe a
// partial failure; the run continues.
type ErrorData struct {
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
	Page    int    `json:"page,omitempty"`
	Batch   int    `json:"batch,omitempty"`
}

// Translation pairs a comment id with its translated and source text.
type Translation struct {
	ID             string `json:"id"`
	TranslatedText string `json:"translatedText"`
	OriginalText   string `json:"originalText"`
}
