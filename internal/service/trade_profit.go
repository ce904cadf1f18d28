package service

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tradelog/internal/db"
)

// ErrInvalidTradeFigures 在已平仓交易的买入价或数量非正时返回，避免除零。
var ErrInvalidTradeFigures = errors.New("trade has non-positive buy price or quantity")

var hundred = decimal.NewFromInt(100)

// Profit 是已平仓交易的盈亏；未平仓时两个字段都为 nil。
type Profit struct {
	Amount     *decimal.Decimal
	Percentage *decimal.Decimal
}

// CalculateProfit 按买入数量全部卖出计算盈亏金额与百分比。
// 金额为精确十进制，百分比四舍五入到两位小数。
func CalculateProfit(trade db.StockTrade) (Profit, error) {
	if !trade.IsClosed() {
		return Profit{}, nil
	}
	if !trade.BuyPrice.IsPositive() || trade.BuyQuantity <= 0 {
		return Profit{}, ErrInvalidTradeFigures
	}

	qty := decimal.NewFromInt(int64(trade.BuyQuantity))
	buyTotal := trade.BuyPrice.Mul(qty)
	sellTotal := trade.SellPrice.Mul(qty)

	amount := sellTotal.Sub(buyTotal)
	percentage := amount.Mul(hundred).DivRound(buyTotal, 2)

	return Profit{Amount: &amount, Percentage: &percentage}, nil
}
