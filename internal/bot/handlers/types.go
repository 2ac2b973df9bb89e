package handlers

import (
	"github.com/vladimiradmaev/bp-assistant/internal/interfaces"
)

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	UserService interfaces.UserServiceInterface
	CaptureSvc  interfaces.CaptureServiceInterface
	ReadingSvc  interfaces.ReadingServiceInterface
	ProfileSvc  interfaces.ProfileServiceInterface
	ReminderSvc interfaces.ReminderServiceInterface
}
