package testdata

// MockAppleOptionsData is an AAPL chain captured on 2025-12-16 for the 2026-01-16
// expiration. It is frozen so pricing and implied volatility tests stay reproducible.
var MockAppleOptionsData = struct {
	Symbol         string
	StockPrice     float64
	ExpirationDate string
	CaptureDate    string
	DaysToExpiry   float64
	RiskFreeRate   float64

	OptionsChain []MockOptionContract
}{
	Symbol:         "AAPL",
	StockPrice:     272.225, // bid/ask mid 271/273.45
	ExpirationDate: "2026-01-16",
	CaptureDate:    "2025-12-16",
	DaysToExpiry:   31,
	RiskFreeRate:   0.05,

	OptionsChain: []MockOptionContract{
		{Symbol: "AAPL260116P00250000", Type: "put", Strike: 250.0, Bid: 0.75, Ask: 0.85, LastPrice: 0.80, BidSize: 450, AskSize: 280, Volume: 29354},
		{Symbol: "AAPL260116P00255000", Type: "put", Strike: 255.0, Bid: 1.14, Ask: 1.24, LastPrice: 1.19, BidSize: 320, AskSize: 180, Volume: 13302},
		{Symbol: "AAPL260116P00260000", Type: "put", Strike: 260.0, Bid: 1.77, Ask: 1.87, LastPrice: 1.82, BidSize: 480, AskSize: 290, Volume: 19499},
		{Symbol: "AAPL260116P00265000", Type: "put", Strike: 265.0, Bid: 2.83, Ask: 2.93, LastPrice: 2.88, BidSize: 390, AskSize: 220, Volume: 13861},
		{Symbol: "AAPL260116P00275000", Type: "put", Strike: 275.0, Bid: 6.10, Ask: 6.30, LastPrice: 6.20, BidSize: 180, AskSize: 140, Volume: 25000},
		{Symbol: "AAPL260116P00280000", Type: "put", Strike: 280.0, Bid: 8.80, Ask: 9.00, LastPrice: 8.90, BidSize: 150, AskSize: 85, Volume: 385},

		{Symbol: "AAPL260116C00275000", Type: "call", Strike: 275.0, Bid: 3.10, Ask: 3.20, LastPrice: 3.15, BidSize: 220, AskSize: 160, Volume: 18000},
		{Symbol: "AAPL260116C00280000", Type: "call", Strike: 280.0, Bid: 4.23, Ask: 4.29, LastPrice: 4.26, BidSize: 135, AskSize: 95, Volume: 485},
		{Symbol: "AAPL260116C00285000", Type: "call", Strike: 285.0, Bid: 2.08, Ask: 2.12, LastPrice: 2.10, BidSize: 340, AskSize: 260, Volume: 53879},
		{Symbol: "AAPL260116C00290000", Type: "call", Strike: 290.0, Bid: 0.83, Ask: 0.87, LastPrice: 0.85, BidSize: 520, AskSize: 380, Volume: 104090},
		{Symbol: "AAPL260116C00300000", Type: "call", Strike: 300.0, Bid: 0.40, Ask: 0.45, LastPrice: 0.43, BidSize: 40, AskSize: 25, Volume: 95},
	},
}

type MockOptionContract struct {
	Symbol    string
	Type      string // "call" or "put"
	Strike    float64
	Bid       float64
	Ask       float64
	LastPrice float64
	BidSize   int
	AskSize   int
	Volume    int
}

// GetMidPrice returns the size-weighted micro-price, or the last trade when the book is empty
func (m MockOptionContract) GetMidPrice() float64 {
	if m.Bid <= 0 || m.Ask <= 0 {
		return m.LastPrice
	}
	if m.BidSize > 0 && m.AskSize > 0 {
		// Bid + (Ask - Bid) * BidSize / (BidSize + AskSize)
		bidRatio := float64(m.BidSize) / float64(m.BidSize+m.AskSize)
		return m.Bid + (m.Ask-m.Bid)*bidRatio
	}
	return (m.Bid + m.Ask) / 2.0
}

// ExpectedATMIVRange is the band a sane solver should land in for near-the-money strikes
var ExpectedATMIVRange = [2]float64{0.05, 0.60}
