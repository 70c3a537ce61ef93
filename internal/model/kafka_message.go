package model

// RepoScannedKey is the Kafka message key for RepoScannedMessage.
const RepoScannedKey = "repo"

// RepoScannedMessage carries the class names found in one repository tree.
type RepoScannedMessage struct {
	UserID     int64          `json:"user_id"`
	Owner      string         `json:"owner"`
	Repo       string         `json:"repo"`
	Files      int            `json:"files"`
	ClassNames map[string]int `json:"class_names"`
}
