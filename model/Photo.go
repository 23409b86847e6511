package model

import "fmt"

// Photo is one candidate photo picked for display.
type Photo struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	URL     string `json:"url"`
	Likes   int    `json:"likes"`
}

// Attachment renders the messages.send attachment reference.
func (p Photo) Attachment() string {
	return fmt.Sprintf("photo%d_%d", p.OwnerID, p.ID)
}
