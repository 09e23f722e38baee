// Package domain 定义了应用程序中使用的数据结构 (数据库模型)。
package domain

import "time"

// User 表示可以登录管理后台的账号。
type User struct {
	ID        uint       `gorm:"primaryKey"`
	Username  string     `gorm:"type:varchar(80);uniqueIndex:idx_users_username;not null"`
	Email     string     `gorm:"type:varchar(120);uniqueIndex:idx_users_email;not null"`
	Password  string     `gorm:"type:varchar(255);not null"` // bcrypt hash
	IsAdmin   bool       `gorm:"not null;default:false"`
	LastLogin *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
