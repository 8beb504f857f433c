package preprocessing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
)

// Strategy は欠損値の処理方法の種類
type Strategy int

const (
	// StrategyDeleteRows は選択列のいずれかが欠損している行を削除する
	StrategyDeleteRows Strategy = iota + 1
	// StrategyFillMean は列ごとの平均値で補完する
	StrategyFillMean
	// StrategyFillMedian は列ごとの中央値で補完する
	StrategyFillMedian
	// StrategyFillConstant は全選択列を同じ定数で補完する
	StrategyFillConstant
)

// AllStrategies は利用可能な処理方法の一覧
var AllStrategies = []Strategy{
	StrategyDeleteRows,
	StrategyFillMean,
	StrategyFillMedian,
	StrategyFillConstant,
}

// String は設定ファイルやログで使う短い名前を返す
func (s Strategy) String() string {
	switch s {
	case StrategyDeleteRows:
		return "delete"
	case StrategyFillMean:
		return "mean"
	case StrategyFillMedian:
		return "median"
	case StrategyFillConstant:
		return "constant"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Label はメニューに表示する名前を返す
func (s Strategy) Label() string {
	switch s {
	case StrategyDeleteRows:
		return "Delete Rows"
	case StrategyFillMean:
		return "Fill with Mean"
	case StrategyFillMedian:
		return "Fill with Median"
	case StrategyFillConstant:
		return "Fill with a Constant Value"
	default:
		return s.String()
	}
}

// NeedsConstant は定数値が必要な処理方法かどうかを返す
func (s Strategy) NeedsConstant() bool {
	return s == StrategyFillConstant
}

// Method は処理方法と、定数補完の場合はその値を持つ
//
// 定数補完の Method はパッケージ外からは FillConstant でしか作れないため、
// 値を持たない定数補完は表現できない。ゼロ値の Method は無効。
type Method struct {
	strategy Strategy
	constant float64
}

var (
	// DeleteRows は欠損を含む行を削除する
	DeleteRows = Method{strategy: StrategyDeleteRows}
	// FillMean は平均値で補完する
	FillMean = Method{strategy: StrategyFillMean}
	// FillMedian は中央値で補完する
	FillMedian = Method{strategy: StrategyFillMedian}
)

// FillConstant は v で補完する Method を返す
func FillConstant(v float64) Method {
	return Method{strategy: StrategyFillConstant, constant: v}
}

// Strategy は処理方法の種類を返す
func (m Method) Strategy() Strategy { return m.strategy }

// Constant は定数補完の値を返す。定数補完以外では ok が false。
func (m Method) Constant() (v float64, ok bool) {
	if m.strategy != StrategyFillConstant {
		return 0, false
	}
	return m.constant, true
}

// String は "constant(2.5)" のような表記を返す
func (m Method) String() string {
	if m.strategy == StrategyFillConstant {
		return fmt.Sprintf("constant(%g)", m.constant)
	}
	return m.strategy.String()
}

func (m Method) validate() error {
	switch m.strategy {
	case StrategyDeleteRows, StrategyFillMean, StrategyFillMedian:
		return nil
	case StrategyFillConstant:
		if !errors.IsFinite(m.constant) {
			return errors.NewConstantValueError(strconv.FormatFloat(m.constant, 'g', -1, 64))
		}
		return nil
	default:
		return errors.NewValidationError("method", errors.ReasonInvalidValue, m.strategy.String())
	}
}

// NewMethod は処理方法と任意の定数から Method を作る
//
// 定数補完で constant が nil、または有限でない場合は ConstantValueError を返す。
// 他の処理方法では constant は無視される。
func NewMethod(s Strategy, constant *float64) (Method, error) {
	m := Method{strategy: s}
	if s == StrategyFillConstant {
		if constant == nil {
			return Method{}, errors.NewConstantValueError("")
		}
		m.constant = *constant
	}
	if err := m.validate(); err != nil {
		return Method{}, err
	}
	return m, nil
}

// ParseStrategy はラベルまたは短い名前から Strategy を得る（大文字小文字は区別しない）
func ParseStrategy(label string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	for _, s := range AllStrategies {
		if key == s.String() || key == strings.ToLower(s.Label()) {
			return s, nil
		}
	}
	return 0, errors.NewValidationError("method", errors.ReasonInvalidValue, label)
}

// ParseMethod はユーザー入力のラベルと定数テキストから Method を作る
//
// 定数補完で constantText が数値として解釈できない場合は ConstantValueError。
func ParseMethod(label, constantText string) (Method, error) {
	s, err := ParseStrategy(label)
	if err != nil {
		return Method{}, err
	}
	if !s.NeedsConstant() {
		return Method{strategy: s}, nil
	}
	text := strings.TrimSpace(constantText)
	if text == "" {
		return Method{}, errors.NewConstantValueError(constantText)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || !errors.IsFinite(v) {
		return Method{}, errors.NewConstantValueError(constantText)
	}
	return FillConstant(v), nil
}
