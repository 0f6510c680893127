package model

// Entity is implemented by every record stored in a ledger collection.
type Entity interface {
	EntityID() uint64
	SetEntityID(id uint64)
}

// Address is a postal address embedded in doctor and medicine records.
type Address struct {
	Address         string `json:"address"`
	Country         string `json:"country"`
	StateOrProvince string `json:"state_or_province"`
	City            string `json:"city"`
}
