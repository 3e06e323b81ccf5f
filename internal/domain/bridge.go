package domain

// TradeEntry mirrors one line of a trade journal (trades.jsonl) produced by
// an external trading process. Only the fields the bridge forwards are kept.
type TradeEntry struct {
	Action         string  `json:"action"`
	Timestamp      string  `json:"timestamp"`
	MarketName     string  `json:"market_name"`
	Side           string  `json:"side"`
	Price          float64 `json:"price"`
	SizeUSDC       float64 `json:"size_usdc"`
	ExpectedReturn float64 `json:"expected_return"`
	OrderID        string  `json:"order_id"`
}

// BalanceSnapshot is a pre-formed wallet balance observation from another
// chain, consumed from a snapshot file (never queried live by this system).
type BalanceSnapshot struct {
	Chain   string  `json:"chain"`
	Token   string  `json:"token"`
	Symbol  string  `json:"symbol"`
	Wallet  string  `json:"wallet"`
	Balance float64 `json:"balance"`
}
