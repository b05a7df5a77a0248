package models

// Client is an approved customer whose pricelists are analysed.
type Client struct {
	ClientID       FlexibleID `json:"client_id"`
	CompanyName    string     `json:"company_name"`
	ContractNumber string     `json:"contract_number"`
}
