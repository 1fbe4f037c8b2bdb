// Package channel maps free-text account and party names to sales channels,
// stock-transfer flags, and destination regions using ordered keyword tests.
package channel

import (
	"strings"

	"github.com/ledgermill/misflow/internal/model"
)

// keywordRule binds a lowercase substring to a channel. Rules are evaluated
// in order: marketplace-specific keywords come before generic payment-gateway
// keywords so a name containing both resolves to the marketplace.
type keywordRule struct {
	keyword string
	channel model.Channel
}

var channelRules = []keywordRule{
	{"amazon", model.ChannelAmazon},
	{"appario", model.ChannelAmazon},
	{"flipkart", model.ChannelFlipkart},
	{"myntra", model.ChannelMyntra},
	{"blinkit", model.ChannelQuickCommerce},
	{"zepto", model.ChannelQuickCommerce},
	{"swiggy", model.ChannelQuickCommerce},
	{"shopify", model.ChannelWebsite},
	{"razorpay", model.ChannelWebsite},
	{"payu", model.ChannelWebsite},
	{"paytm", model.ChannelWebsite},
	{"shiprocket", model.ChannelWebsite},
	{"counter sale", model.ChannelOffline},
	{"retail", model.ChannelOffline},
}

// selfEntityKeywords mark names referring to the business's own entities.
// Transfer and destination-region detection only apply to such names.
var selfEntityKeywords = []string{
	"branch",
	"head office",
	"h.o.",
	"self",
	"own transfer",
	"stock transfer",
}

var regionKeywords = []struct {
	keyword string
	region  model.Region
}{
	{"karnataka", model.RegionKarnataka},
	{"bangalore", model.RegionKarnataka},
	{"bengaluru", model.RegionKarnataka},
	{"maharashtra", model.RegionMaharashtra},
	{"mumbai", model.RegionMaharashtra},
	{"pune", model.RegionMaharashtra},
	{"delhi", model.RegionDelhi},
	{"telangana", model.RegionTelangana},
	{"hyderabad", model.RegionTelangana},
	{"west bengal", model.RegionWestBengal},
	{"kolkata", model.RegionWestBengal},
}

// DetectChannel resolves a party or account name to a sales channel.
// Case-insensitive, deterministic, first keyword wins; ChannelOther is the
// fallback when nothing matches.
func DetectChannel(name string) model.Channel {
	lower := strings.ToLower(name)
	for _, rule := range channelRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.channel
		}
	}
	return model.ChannelOther
}

// DetectTransfer reports whether a name denotes an inter-entity stock
// transfer. Only names carrying a self-entity keyword qualify.
func DetectTransfer(name string) bool {
	return isSelfEntity(strings.ToLower(name))
}

// DetectDestinationRegion resolves the destination state of a transfer.
// Returns RegionNone unless the name refers to a self entity.
func DetectDestinationRegion(name string) model.Region {
	lower := strings.ToLower(name)
	if !isSelfEntity(lower) {
		return model.RegionNone
	}
	for _, rule := range regionKeywords {
		if strings.Contains(lower, rule.keyword) {
			return rule.region
		}
	}
	return model.RegionNone
}

func isSelfEntity(lower string) bool {
	for _, kw := range selfEntityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
