package common

import (
	"github.com/google/uuid"
)

// NewUserID generates a unique user ID with the "usr_" prefix
func NewUserID() string {
	return "usr_" + uuid.New().String()
}

// NewProjectID generates a unique project ID with the "prj_" prefix
func NewProjectID() string {
	return "prj_" + uuid.New().String()
}

// NewMessageID generates a unique message ID with the "msg_" prefix
func NewMessageID() string {
	return "msg_" + uuid.New().String()
}

// NewArticleID generates a unique article ID with the "art_" prefix
func NewArticleID() string {
	return "art_" + uuid.New().String()
}
