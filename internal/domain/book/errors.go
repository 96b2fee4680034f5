package book

import (
	"fmt"

	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrNoBooksFound 筛选结果为空
	ErrNoBooksFound = apperrors.ErrNoBooksFound

	// ErrInvalidDate 日期既不是YYYY-MM-DD也不是四位年份
	ErrInvalidDate = apperrors.ErrInvalidDate

	ErrInvalidPrice    = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")
	ErrInvalidDiscount = apperrors.New(apperrors.ErrCodeInvalidParams, "折扣必须在0到1之间")
	ErrInvalidStock    = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")
	ErrInvalidLimit    = apperrors.New(apperrors.ErrCodeInvalidParams, "limit必须在1到100之间")

	// 筛选参数：格式错误与越界共用一条提示
	ErrInvalidPriceParam    = apperrors.New(apperrors.ErrCodeInvalidParams, "价格参数必须是不小于0的数字")
	ErrInvalidDiscountParam = apperrors.New(apperrors.ErrCodeInvalidParams, "折扣参数必须是0到1之间的数字")
	ErrInvalidOffset   = apperrors.New(apperrors.ErrCodeInvalidParams, "offset不能为负数")
)

// UnknownCode 录入时遇到未登记的枚举编码
func UnknownCode(field, code string) error {
	return apperrors.WithMessage(apperrors.ErrInvalidParams, fmt.Sprintf("未知的%s编码: %s", field, code))
}
