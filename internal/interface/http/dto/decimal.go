package dto

import "github.com/shopspring/decimal"

// 价格、折扣、评分在响应中输出为JSON数字（默认带引号）
// 请求体两种写法都能解析
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
