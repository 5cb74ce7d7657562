package partner

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/ipshield/backend/internal/domain/shared/textfold"
)

// CustomerStatus represents the processing status of a customer
type CustomerStatus string

const (
	CustomerStatusApproved  CustomerStatus = "approved"  // awaiting review
	CustomerStatusPending   CustomerStatus = "pending"   // has work in progress
	CustomerStatusCompleted CustomerStatus = "completed" // all work delivered
)

// IsValid checks if the status is a known value
func (s CustomerStatus) IsValid() bool {
	switch s {
	case CustomerStatusApproved, CustomerStatusPending, CustomerStatusCompleted:
		return true
	}
	return false
}

// CustomerType represents the type of customer
type CustomerType string

const (
	CustomerTypePersonal CustomerType = "personal"
	CustomerTypeCompany  CustomerType = "company"
)

// IsValid checks if the type is a known value
func (t CustomerType) IsValid() bool {
	return t == CustomerTypePersonal || t == CustomerTypeCompany
}

var (
	digitsOnly  = regexp.MustCompile(`^\d+$`)
	emailFormat = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// CustomerProfile holds the editable fields of a customer
type CustomerProfile struct {
	Code     string
	Name     string
	Type     CustomerType
	Address  string
	Phone    string
	Email    string
	CCCD     string // citizen identity card number
	TaxCode  string
	Manager  string
	Position string
	Note     string
}

// Customer is the aggregate root for the people and companies the firm serves
type Customer struct {
	shared.BaseAggregateRoot
	Code     string
	Name     string
	Type     CustomerType
	Status   CustomerStatus
	Address  string
	Phone    string
	Email    string
	CCCD     string
	TaxCode  string
	Manager  string
	Position string
	Note     string
}

// NewCustomer creates a new customer in the approved status
func NewCustomer(p CustomerProfile) (*Customer, error) {
	p = p.normalized()
	if err := p.validate(); err != nil {
		return nil, err
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            CustomerStatusApproved,
	}
	customer.apply(p)

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))
	return customer, nil
}

// Update replaces the customer's profile fields
func (c *Customer) Update(p CustomerProfile) error {
	p = p.normalized()
	if err := p.validate(); err != nil {
		return err
	}

	c.apply(p)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// ChangeStatus sets the customer status
func (c *Customer) ChangeStatus(status CustomerStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("status", "must be one of approved, pending, completed")
	}
	if c.Status == status {
		return nil
	}

	old := c.Status
	c.Status = status
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerStatusChangedEvent(c, old, status))
	return nil
}

// MarkPending moves the customer to pending; called whenever a contract is opened
func (c *Customer) MarkPending() {
	_ = c.ChangeStatus(CustomerStatusPending)
}

// SearchKey returns the accent-folded text used for substring search
func (c *Customer) SearchKey() string {
	return textfold.Key(c.Code, c.Name, c.Email, c.Phone)
}

// DisplayName returns "CODE - Name"
func (c *Customer) DisplayName() string {
	return c.Code + " - " + c.Name
}

func (c *Customer) apply(p CustomerProfile) {
	c.Code = p.Code
	c.Name = p.Name
	c.Type = p.Type
	c.Address = p.Address
	c.Phone = p.Phone
	c.Email = p.Email
	c.CCCD = p.CCCD
	c.TaxCode = p.TaxCode
	c.Manager = p.Manager
	c.Position = p.Position
	c.Note = p.Note
}

func (p CustomerProfile) normalized() CustomerProfile {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
	p.CCCD = strings.TrimSpace(p.CCCD)
	p.TaxCode = strings.TrimSpace(p.TaxCode)
	if p.Type == "" {
		p.Type = CustomerTypePersonal
	}
	return p
}

func (p CustomerProfile) validate() error {
	var errs shared.ValidationErrors

	switch {
	case p.Code == "":
		errs.Add("customer_code", "is required")
	case utf8.RuneCountInString(p.Code) > 50:
		errs.Add("customer_code", "cannot exceed 50 characters")
	}
	switch {
	case p.Name == "":
		errs.Add("name", "is required")
	case utf8.RuneCountInString(p.Name) > 255:
		errs.Add("name", "cannot exceed 255 characters")
	}
	if !p.Type.IsValid() {
		errs.Add("customer_type", "must be personal or company")
	}
	if p.Phone != "" && (!digitsOnly.MatchString(p.Phone) || len(p.Phone) > 20) {
		errs.Add("phone", "may only contain digits")
	}
	if p.Email != "" && !emailFormat.MatchString(p.Email) {
		errs.Add("email", "invalid email format")
	}
	if p.CCCD != "" && !digitsOnly.MatchString(p.CCCD) {
		errs.Add("cccd", "may only contain digits")
	}
	if p.TaxCode != "" && !digitsOnly.MatchString(p.TaxCode) {
		errs.Add("tax_code", "may only contain digits")
	}

	return errs.Err()
}
