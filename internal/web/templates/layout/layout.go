package layout

// FlashMessage is a one-shot notice shown on the next page render
type FlashMessage struct {
	Type    string // success, error, info
	Message string
}

// PageData is shared by every page
type PageData struct {
	Title string
	Flash *FlashMessage
}

func (d PageData) pageTitle() string {
	if d.Title == "" {
		return "Scoreboard"
	}
	return d.Title + " - Scoreboard"
}
