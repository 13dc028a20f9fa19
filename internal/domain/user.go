package domain

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User Model. Identity is owned by the auth boundary; the core only references ID.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`                                         // Primary key
	Username string `gorm:"size:50;unique;not null" json:"username"`                      // Unique username
	Password string `gorm:"not null" json:"-"`                                            // Hashed password
	Role     string `gorm:"default:user" json:"role"`                                     // Role: user or admin
	Wallet   Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"wallet"` // Created together with the user
}
