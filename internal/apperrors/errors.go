// internal/apperrors/errors.go
package apperrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign %s not found", e.CampaignID)
}

func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

type ErrMemberNotFound struct {
	MemberID string
}

func (e *ErrMemberNotFound) Error() string {
	return fmt.Sprintf("member %s not found", e.MemberID)
}

func NewMemberNotFound(id string) error {
	return &ErrMemberNotFound{MemberID: id}
}

// ErrMemberOptedOut rejects sends to members who opted out of the channel.
type ErrMemberOptedOut struct {
	MemberID string
	Channel  string
}

func (e *ErrMemberOptedOut) Error() string {
	return fmt.Sprintf("member %s has opted out of %s", e.MemberID, e.Channel)
}

func NewMemberOptedOut(id, channel string) error {
	return &ErrMemberOptedOut{MemberID: id, Channel: channel}
}

type ErrNoPhoneNumber struct {
	MemberID string
}

func (e *ErrNoPhoneNumber) Error() string {
	return fmt.Sprintf("member %s has no phone number", e.MemberID)
}

func NewNoPhoneNumber(id string) error {
	return &ErrNoPhoneNumber{MemberID: id}
}

// ErrUnauthorized covers both bad bearer tokens and bad machine API keys.
type ErrUnauthorized struct {
	Reason string
}

func (e *ErrUnauthorized) Error() string {
	return "unauthorized: " + e.Reason
}

func NewUnauthorized(reason string) error {
	return &ErrUnauthorized{Reason: reason}
}
