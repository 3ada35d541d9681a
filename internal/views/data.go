package views

import (
	"time"

	"printhub/console/internal/fleet"
	"printhub/console/internal/models"
	"printhub/console/internal/notify"
)

type DashboardData struct {
	Summary      fleet.Summary
	Entries      []fleet.Entry
	Recent       []notify.Toast
	History      []models.Alert
	Threshold    int
	RefreshedAt  time.Time
	RefreshEvery time.Duration
	ListError    string
}

type PrintersData struct {
	Entries     []fleet.Entry
	Threshold   int
	RefreshedAt time.Time
	ListError   string
	Subnet      string
}

type PrinterData struct {
	Entry     fleet.Entry
	Threshold int
}

type AddPrinterForm struct {
	IP             string
	Model          string
	ConnectionMode string
	SNMPCommunity  string
}

type PrinterAddedData struct {
	Printer        models.Printer
	Target         string
	RedirectAfter  time.Duration
	RedirectMillis int64
}

type SettingsData struct {
	Users      []models.User
	UsersError string
	NewUser    NewUserForm
}

type NewUserForm struct {
	Username string
	Role     string
}

type ConfirmDeleteUserData struct {
	UserID   int
	Username string
}

type AuthData struct {
	Username string
	Notice   string
}
