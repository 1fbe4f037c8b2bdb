package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Channel identifies the sales channel a line item belongs to.
type Channel string

// Sales channel constants.
const (
	ChannelAmazon        Channel = "amazon"
	ChannelFlipkart      Channel = "flipkart"
	ChannelMyntra        Channel = "myntra"
	ChannelQuickCommerce Channel = "quick_commerce"
	ChannelWebsite       Channel = "website"
	ChannelOffline       Channel = "offline"
	ChannelOther         Channel = "other"
)

// Region identifies a destination state for inter-entity stock transfers.
type Region string

// Destination region constants.
const (
	RegionNone        Region = ""
	RegionKarnataka   Region = "karnataka"
	RegionMaharashtra Region = "maharashtra"
	RegionDelhi       Region = "delhi"
	RegionTelangana   Region = "telangana"
	RegionWestBengal  Region = "west_bengal"
)

// SalesLineItem is one row from a sales register. The amount sign indicates
// sale vs. return; IsReturn and IsTransfer are mutually exclusive and a
// transfer is excluded from both sales and returns totals.
type SalesLineItem struct {
	Party             string          `json:"party"`
	Channel           Channel         `json:"channel"`
	DestinationRegion Region          `json:"destination_region,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	IsReturn          bool            `json:"is_return"`
	IsTransfer        bool            `json:"is_transfer"`
}

// Validate enforces the return/transfer exclusivity invariant.
func (s *SalesLineItem) Validate() error {
	if s.IsReturn && s.IsTransfer {
		return fmt.Errorf("sales line %q: is_return and is_transfer are mutually exclusive", s.Party)
	}
	return nil
}
