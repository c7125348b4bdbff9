package payson

// Checkout statuses reported by Payson.
const (
	StatusCreated           = "created"
	StatusFormsFilled       = "formsFilled"
	StatusReadyToPay        = "readyToPay"
	StatusProcessingPayment = "processingPayment"
	StatusReadyToShip       = "readyToShip"
	StatusShipped           = "shipped"
	StatusPaidToAccount     = "paidToAccount"
	StatusCanceled          = "canceled"
	StatusCredited          = "credited"
	StatusExpired           = "expired"
	StatusDenied            = "denied"
)

type Checkout struct {
	ID             string    `json:"id,omitempty"`
	Status         string    `json:"status,omitempty"`
	Snippet        string    `json:"snippet,omitempty"`
	PurchaseID     int64     `json:"purchaseId,omitempty"`
	ExpirationTime string    `json:"expirationTime,omitempty"`
	Merchant       Merchant  `json:"merchant"`
	Order          PayData   `json:"order"`
	Gui            *Gui      `json:"gui,omitempty"`
	Customer       *Customer `json:"customer,omitempty"`
}

type Merchant struct {
	CheckoutURI     string `json:"checkoutUri"`
	ConfirmationURI string `json:"confirmationUri"`
	NotificationURI string `json:"notificationUri"`
	TermsURI        string `json:"termsUri"`
	Reference       string `json:"reference,omitempty"`
	PartnerID       string `json:"partnerId,omitempty"`
	IntegrationInfo string `json:"integrationInfo,omitempty"`
}

type Gui struct {
	ColorScheme  string `json:"colorScheme,omitempty"` // "white", "gray", "blue" ...
	Locale       string `json:"locale,omitempty"`      // "sv", "en", "fi"
	RequestPhone bool   `json:"requestPhone,omitempty"`
	Verification string `json:"verification,omitempty"`
}

type Customer struct {
	City           string `json:"city,omitempty"`
	CountryCode    string `json:"countryCode,omitempty"`
	Email          string `json:"email,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	Phone          string `json:"phone,omitempty"`
	PostalCode     string `json:"postalCode,omitempty"`
	Street         string `json:"street,omitempty"`
	IdentityNumber string `json:"identityNumber,omitempty"`
}
