package model

// Lead is a contact request from the trial sign-up form.
type Lead struct {
	FullName string
	Phone    string
	Email    string
	City     string
	Studio   string
}

// Record store field names of the leads table.
const (
	LeadFieldFullName = "FIO"
	LeadFieldPhone    = "Phone"
	LeadFieldEmail    = "email"
	LeadFieldCity     = "City"
	LeadFieldStudio   = "Studio"
	LeadFieldSource   = "Source"
)

// LeadSourceWebsite is the multi-select option marking site leads.
const LeadSourceWebsite = "website"
