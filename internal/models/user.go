package models

// User holds the subset of the user document this service touches
// (users collection). DeviceID carries one push token per signed-in
// device; the spelling of the language field is the historical one.
type User struct {
	ID                       string   `bson:"id" json:"id"`
	DeviceID                 []string `bson:"deviceId" json:"deviceId"`
	PreferredLanguage        string   `bson:"preferedLanguage" json:"preferedLanguage"`
	UnreadNotificationsCount int64    `bson:"unreadNotificationsCount" json:"unreadNotificationsCount"`
}
