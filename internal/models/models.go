// Package models はユーザー・イベント・参加登録のドメインモデルを定義します。
package models

import "time"

// Role はユーザーの権限区分です。
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// IsAdmin は管理者権限を持つかどうかを返します。未知の値は管理者扱いしません。
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User はアカウント情報です。PasswordHash は JSON に出力しません。
type User struct {
	ID           string `json:"_id" gorm:"primaryKey;size:36"`
	Name         string `json:"name"`
	Enrollment   string `json:"enrollment" gorm:"index"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role" gorm:"default:student"`
}

// Profile はログイン応答で返す公開情報です。
type Profile struct {
	Name       string `json:"name"`
	Enrollment string `json:"enrollment"`
	Role       Role   `json:"role"`
}

// Profile はユーザーの公開情報を返します。
func (u *User) Profile() Profile {
	return Profile{Name: u.Name, Enrollment: u.Enrollment, Role: u.Role}
}

// Event はキャンパスイベントです。
type Event struct {
	ID          string `json:"_id" gorm:"primaryKey;size:36"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Registration はユーザーとイベントの参加登録です。
type Registration struct {
	ID        string    `json:"_id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"userId" gorm:"index:idx_registration_pair;size:36"`
	EventID   string    `json:"eventId" gorm:"index:idx_registration_pair;size:36"`
	Timestamp time.Time `json:"timestamp"`
}
