package models

// ValidationMessage is the user-facing report produced when a title fails the
// whitelist. It is handed to the notification surface and never persisted by
// the validator itself.
type ValidationMessage struct {
	MessageTitle  string `json:"message_title"`
	MessageBody   string `json:"message_body"`
	MessageDetail string `json:"message_detail"`
}
