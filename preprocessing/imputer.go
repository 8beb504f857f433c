// Package preprocessing は選択された列の欠損値の検出と処理を提供する
package preprocessing

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/dataexplorer/core/parallel"
	"github.com/YuminosukeSato/dataexplorer/core/table"
	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
	"github.com/YuminosukeSato/dataexplorer/pkg/log"
)

const (
	reportHeader   = "Missing values detected in the following columns:"
	reportNoneText = "No missing values were found."
)

// ColumnMissing は列ごとの欠損数
type ColumnMissing struct {
	Column string `json:"column"`
	Count  int    `json:"missing"`
}

// MissingValueProcessor は選択列の欠損値を検出し、処理済みのコピーを作る
//
// 生成時に選択列のディープコピーを保持し、元のテーブルには一切触れない。
// どのメソッドもスナップショットを変更しないため、同じプロセッサで何度でも
// 処理を実行できる。
type MissingValueProcessor struct {
	snapshot  *table.Table
	selection table.Selection
	methods   []Strategy
	threshold int
	logger    log.Logger
}

// ProcessorOption は MissingValueProcessor の設定
type ProcessorOption func(*MissingValueProcessor)

// WithLogger はロガーを設定する
func WithLogger(l log.Logger) ProcessorOption {
	return func(p *MissingValueProcessor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMethods は提示する処理方法を限定する
func WithMethods(methods ...Strategy) ProcessorOption {
	return func(p *MissingValueProcessor) {
		if len(methods) > 0 {
			p.methods = append([]Strategy(nil), methods...)
		}
	}
}

// WithParallelThreshold は行単位の並列補完を始める行数を設定する
func WithParallelThreshold(n int) ProcessorOption {
	return func(p *MissingValueProcessor) {
		if n > 0 {
			p.threshold = n
		}
	}
}

// NewMissingValueProcessor は t の選択列のスナップショットを持つプロセッサを作る
//
// 使用例:
//
//	sel, _ := table.NewSelection(t, "price", "rooms")
//	p, err := preprocessing.NewMissingValueProcessor(t, sel)
//	hasMissing, report := p.CheckForMissing()
//	cleaned, err := p.Preprocess(preprocessing.FillMedian)
func NewMissingValueProcessor(t *table.Table, sel table.Selection, opts ...ProcessorOption) (*MissingValueProcessor, error) {
	if sel.IsEmpty() {
		return nil, errors.NewEmptySelectionError("NewMissingValueProcessor")
	}
	snapshot, err := t.Select(sel.Names()...)
	if err != nil {
		return nil, err
	}

	p := &MissingValueProcessor{
		snapshot:  snapshot,
		selection: sel,
		methods:   append([]Strategy(nil), AllStrategies...),
		threshold: parallel.DefaultThreshold,
		logger:    log.GetLoggerWithName("preprocessing"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Methods は利用可能な処理方法を返す
func (p *MissingValueProcessor) Methods() []Strategy {
	return append([]Strategy(nil), p.methods...)
}

// Columns は選択列の名前を選択順に返す
func (p *MissingValueProcessor) Columns() []string {
	return p.selection.Names()
}

// MissingCounts は選択列ごとの欠損数を選択順に返す（欠損0の列も含む）
func (p *MissingValueProcessor) MissingCounts() []ColumnMissing {
	out := make([]ColumnMissing, 0, p.snapshot.NumColumns())
	for _, c := range p.snapshot.Columns() {
		out = append(out, ColumnMissing{Column: c.Name(), Count: c.MissingCount()})
	}
	return out
}

// CheckForMissing は選択列に欠損があるかどうかと、人が読むためのレポートを返す
func (p *MissingValueProcessor) CheckForMissing() (bool, string) {
	var b strings.Builder
	found := false
	for _, cm := range p.MissingCounts() {
		if cm.Count == 0 {
			continue
		}
		if !found {
			b.WriteString(reportHeader)
			b.WriteByte('\n')
			found = true
		}
		fmt.Fprintf(&b, "- %s: %d missing values\n", cm.Column, cm.Count)
	}

	p.logger.Debug("missing value check",
		log.OperationKey, log.OperationCheckMissing,
		log.PhaseKey, log.PhasePreprocessing,
		log.ColumnsKey, p.selection.Len(),
		log.MissingKey, found,
	)
	if !found {
		return false, reportNoneText
	}
	return true, b.String()
}

// PreprocessStrategy は s と任意の定数で Preprocess を実行する
//
// 定数補完で constant が nil の場合は ConstantValueError を返し、何もしない。
func (p *MissingValueProcessor) PreprocessStrategy(s Strategy, constant *float64) (*table.Table, error) {
	m, err := NewMethod(s, constant)
	if err != nil {
		return nil, err
	}
	return p.Preprocess(m)
}

// Preprocess は選択列だけを含む処理済みの新しいテーブルを返す
//
// 平均・中央値・定数補完ではテキスト列は TypeError、観測値が一つもない列は
// 平均・中央値を決められないため ValueError になる。エラー時は何も返さない。
func (p *MissingValueProcessor) Preprocess(m Method) (*table.Table, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	var (
		out *table.Table
		err error
	)
	if m.Strategy() == StrategyDeleteRows {
		out = p.deleteRows()
	} else {
		out, err = p.fill(m)
		if err != nil {
			fields := []any{
				log.OperationKey, log.OperationPreprocess,
				log.PhaseKey, log.PhasePreprocessing,
				log.StrategyKey, m.Strategy().String(),
			}
			p.logger.Warn("preprocess failed", append(fields, log.ErrorFields(err)...)...)
			return nil, err
		}
	}

	fields := []any{
		log.OperationKey, log.OperationPreprocess,
		log.PhaseKey, log.PhasePreprocessing,
		log.StrategyKey, m.Strategy().String(),
		log.SamplesKey, p.snapshot.NumRows(),
		log.SamplesOutKey, out.NumRows(),
		log.ColumnsKey, out.NumColumns(),
		log.FingerprintKey, fmt.Sprintf("%016x", p.snapshot.Fingerprint()),
	}
	if v, ok := m.Constant(); ok {
		fields = append(fields, log.ConstantKey, v)
	}
	p.logger.Debug("preprocess completed", fields...)
	return out, nil
}

// deleteRows は選択列のいずれかが欠損している行を除いたテーブルを返す
func (p *MissingValueProcessor) deleteRows() *table.Table {
	cols := p.snapshot.Columns()
	keep := make([]int, 0, p.snapshot.NumRows())
	for i := 0; i < p.snapshot.NumRows(); i++ {
		complete := true
		for _, c := range cols {
			if c.IsMissing(i) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	return p.snapshot.TakeRows(keep)
}

// fill は列ごとの補完値を決めてから、欠損セルを埋めた列でスナップショットの列を置き換える
func (p *MissingValueProcessor) fill(m Method) (*table.Table, error) {
	cols := p.snapshot.Columns()
	values := make([]float64, len(cols))
	for j, c := range cols {
		if c.Kind() != table.Numeric {
			return nil, errors.NewTypeError("Preprocess", c.Name(), table.Numeric.String(), c.Kind().String())
		}
		v, err := fillValue(m, c)
		if err != nil {
			return nil, err
		}
		values[j] = v
	}

	out := p.snapshot
	for j, c := range cols {
		cells := c.Cells()
		v := values[j]
		parallel.ParallelizeWithThreshold(len(cells), p.threshold, func(start, end int) {
			for i := start; i < end; i++ {
				if !cells[i].Valid {
					cells[i] = table.F(v)
				}
			}
		})
		col, err := table.NewNumericColumn(c.Name(), cells)
		if err != nil {
			return nil, err
		}
		if out, err = out.Replace(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func fillValue(m Method, c *table.Column) (float64, error) {
	if v, ok := m.Constant(); ok {
		return v, nil
	}
	observed, err := c.Observed()
	if err != nil {
		return 0, err
	}
	if len(observed) == 0 {
		return 0, errors.NewValueError("Preprocess",
			fmt.Sprintf("column %q has no observed values to compute the %s", c.Name(), m.Strategy()))
	}
	if m.Strategy() == StrategyFillMedian {
		return median(observed), nil
	}
	return mean(observed), nil
}
