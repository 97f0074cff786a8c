package models

import "time"

// User is a document in the users collection.
type User struct {
	ID        string    `json:"id"         bson:"id"`
	Name      string    `json:"full_name"  bson:"name"`
	Email     string    `json:"email"      bson:"email"`
	Password  string    `json:"-"          bson:"password"` // never serialize
	Bio       string    `json:"bio"        bson:"bio"`
	Avatar    string    `json:"avatar"     bson:"avatar"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}

// Profile is the public view of a user returned by /users/profile.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"full_name"`
	Email  string `json:"email"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

// ProfileOf projects a user onto its profile view.
func ProfileOf(u *User) Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Bio: u.Bio, Avatar: u.Avatar}
}

// SignupRequest is the JSON body for POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the JSON body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by signup, login and refresh.
type AuthResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	TokenType    string  `json:"token_type"`
	User         Profile `json:"user"`
}

// ProfileUpdate is the JSON body for PATCH /users/profile. Nil fields are left alone.
type ProfileUpdate struct {
	FullName *string `json:"full_name"`
	Bio      *string `json:"bio"`
}
