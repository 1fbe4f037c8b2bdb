package channel

import (
	"testing"

	"github.com/ledgermill/misflow/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestDetectChannel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want model.Channel
	}{
		{
			name: "marketplace keyword",
			in:   "AMAZON SALE CASH SALE",
			want: model.ChannelAmazon,
		},
		{
			name: "marketplace wins over gateway when both present",
			in:   "FLIPKART PAYMENT VIA RAZORPAY",
			want: model.ChannelFlipkart,
		},
		{
			name: "gateway keyword maps to website",
			in:   "Razorpay Software Pvt Ltd",
			want: model.ChannelWebsite,
		},
		{
			name: "shiprocket maps to website",
			in:   "SHIPROCKET PVT LTD",
			want: model.ChannelWebsite,
		},
		{
			name: "case insensitive",
			in:   "myntra designs pvt ltd",
			want: model.ChannelMyntra,
		},
		{
			name: "quick commerce",
			in:   "Blinkit Commerce",
			want: model.ChannelQuickCommerce,
		},
		{
			name: "counter sale is offline",
			in:   "Counter Sale - Walk In",
			want: model.ChannelOffline,
		},
		{
			name: "no keyword falls back to other",
			in:   "Sharma Traders",
			want: model.ChannelOther,
		},
		{
			name: "empty name falls back to other",
			in:   "",
			want: model.ChannelOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectChannel(tt.in))
		})
	}
}

func TestDetectChannel_Deterministic(t *testing.T) {
	// Same input must always resolve to the same channel.
	in := "AMAZON SELLER SERVICES RAZORPAY"
	first := DetectChannel(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DetectChannel(in))
	}
	assert.Equal(t, model.ChannelAmazon, first)
}

func TestDetectTransfer(t *testing.T) {
	assert.True(t, DetectTransfer("Stock Transfer to Mumbai Branch"))
	assert.True(t, DetectTransfer("HEAD OFFICE GODOWN"))
	assert.False(t, DetectTransfer("Amazon Seller Services"))
	assert.False(t, DetectTransfer(""))
}

func TestDetectDestinationRegion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want model.Region
	}{
		{
			name: "transfer with region keyword",
			in:   "Stock Transfer - Mumbai Branch",
			want: model.RegionMaharashtra,
		},
		{
			name: "region keyword without self entity is ignored",
			in:   "Mumbai Textiles Pvt Ltd",
			want: model.RegionNone,
		},
		{
			name: "self entity without region",
			in:   "Stock Transfer Outward",
			want: model.RegionNone,
		},
		{
			name: "city alias resolves to state",
			in:   "Branch Office Bengaluru",
			want: model.RegionKarnataka,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDestinationRegion(tt.in))
		})
	}
}
