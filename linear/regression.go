// Package linear は単回帰（1特徴量の最小二乗法）を提供する
package linear

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/dataexplorer/core/model"
	"github.com/YuminosukeSato/dataexplorer/core/parallel"
	"github.com/YuminosukeSato/dataexplorer/core/table"
	"github.com/YuminosukeSato/dataexplorer/metrics"
	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
	"github.com/YuminosukeSato/dataexplorer/pkg/log"
)

const modelName = "SimpleRegression"

// SimpleRegression は target = intercept + slope*feature の単回帰モデル
//
// 学習は一度だけ行える。学習後のモデルは読み取り専用で、複数の goroutine
// から同時に Predict してよい。
type SimpleRegression struct {
	model.BaseEstimator

	featureName string
	targetName  string
	intercept   float64
	slope       float64
	rSquared    float64
	mse         float64
	predictions []float64

	id        string
	threshold int
	logger    log.Logger
}

var _ model.LinearModel = (*SimpleRegression)(nil)

// NewSimpleRegression は未学習の単回帰モデルを作成する
func NewSimpleRegression(opts ...Option) *SimpleRegression {
	r := &SimpleRegression{
		threshold: parallel.DefaultThreshold,
		logger:    log.GetLoggerWithName("linear"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.id = uuid.NewString()
	r.logger = r.logger.With(log.ModelNameKey, modelName, log.EstimatorIDKey, r.id)
	return r
}

// ID はログでこのモデルを識別するための ID を返す
func (r *SimpleRegression) ID() string { return r.id }

// FitColumns は新しいモデルを作成して学習させる。失敗時は nil を返す。
func FitColumns(feature, target *table.Column, opts ...Option) (*SimpleRegression, error) {
	r := NewSimpleRegression(opts...)
	if err := r.Fit(feature, target); err != nil {
		return nil, err
	}
	return r, nil
}

// Fit は特徴量列と目的変数列でモデルを学習させる
//
// 検査の順序:
//  1. テキスト列 → TypeError
//  2. 長さの不一致 → ValidationError (ReasonLengthMismatch)
//  3. 空の列 → ValidationError (ReasonEmptyInput)
//  4. 欠損セル → TypeError
//
// 学習済みモデルに対しては AlreadyFittedError を返す。エラー時はモデルの状態は変わらない。
func (r *SimpleRegression) Fit(feature, target *table.Column) error {
	if err := r.RequireUnfitted(modelName); err != nil {
		return err
	}
	for _, c := range []*table.Column{feature, target} {
		if c.Kind() != table.Numeric {
			return errors.NewTypeError(modelName+".Fit", c.Name(), table.Numeric.String(), c.Kind().String())
		}
	}
	if feature.Len() != target.Len() {
		return errors.NewValidationError("target", errors.ReasonLengthMismatch,
			fmt.Sprintf("%d rows vs %d rows", feature.Len(), target.Len()))
	}
	if feature.Len() == 0 {
		return errors.NewValidationError("feature", errors.ReasonEmptyInput, 0)
	}
	x, err := feature.Floats()
	if err != nil {
		return err
	}
	y, err := target.Floats()
	if err != nil {
		return err
	}
	return r.fit(feature.Name(), x, target.Name(), y)
}

// FitSlices は Fit と同じ契約でスライスから学習させる。NaN と Inf は TypeError。
func (r *SimpleRegression) FitSlices(featureName string, x []float64, targetName string, y []float64) error {
	if err := r.RequireUnfitted(modelName); err != nil {
		return err
	}
	if len(x) != len(y) {
		return errors.NewValidationError("target", errors.ReasonLengthMismatch,
			fmt.Sprintf("%d rows vs %d rows", len(x), len(y)))
	}
	if len(x) == 0 {
		return errors.NewValidationError("feature", errors.ReasonEmptyInput, 0)
	}
	for _, s := range []struct {
		name   string
		values []float64
	}{{featureName, x}, {targetName, y}} {
		if i := errors.FirstNonFinite(s.values); i >= 0 {
			return errors.NewTypeError(modelName+".FitSlices", s.name, "finite numeric values",
				fmt.Sprintf("%v at row %d", s.values[i], i))
		}
	}
	return r.fit(featureName, append([]float64(nil), x...), targetName, append([]float64(nil), y...))
}

// fit は最小二乗解と指標を計算してから、まとめて状態を更新する
func (r *SimpleRegression) fit(featureName string, x []float64, targetName string, y []float64) error {
	start := time.Now()
	n := len(x)

	var intercept, slope float64
	err := errors.SafeExecute(modelName+".Fit", func() error {
		var solveErr error
		intercept, slope, solveErr = r.solve(x, y)
		return solveErr
	})
	if err != nil {
		fields := []any{
			log.OperationKey, log.OperationFit,
			log.PhaseKey, log.PhaseTraining,
			log.FeatureKey, featureName,
			log.TargetKey, targetName,
		}
		r.logger.Warn("fit failed", append(fields, log.ErrorFields(err)...)...)
		return err
	}
	if err := errors.CheckNumericalStability(modelName+".Fit", []float64{intercept, slope}); err != nil {
		return err
	}

	predictions := make([]float64, n)
	parallel.ParallelizeWithThreshold(n, r.threshold, func(s, e int) {
		for i := s; i < e; i++ {
			predictions[i] = intercept + slope*x[i]
		}
	})

	yVec := mat.NewVecDense(n, y)
	predVec := mat.NewVecDense(n, predictions)
	mse, err := metrics.MSE(yVec, predVec)
	if err != nil {
		return err
	}
	r2, err := metrics.R2Score(yVec, predVec)
	switch {
	case errors.Is(err, errors.ErrZeroVariance):
		r2 = 0
		errors.Warn(errors.NewUndefinedMetricWarning("r_squared", "target column has zero variance", 0))
	case err != nil:
		return err
	default:
		r2 = errors.ClipValue(r2, 0, 1)
	}

	r.featureName = featureName
	r.targetName = targetName
	r.intercept = intercept
	r.slope = slope
	r.rSquared = r2
	r.mse = mse
	r.predictions = predictions
	r.SetFitted(n)

	r.logger.Info("fit completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.FeatureKey, featureName,
		log.TargetKey, targetName,
		log.SamplesKey, n,
		log.InterceptKey, intercept,
		log.SlopeKey, slope,
		log.R2ScoreKey, r2,
		log.MSEKey, mse,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// solve は中心化したデータで最小二乗解を求める
//
//	slope = Σ(x-x̄)(y-ȳ) / Σ(x-x̄)²,  intercept = ȳ - slope*x̄
//
// 特異になるのは特徴量の分散が0の場合だけ。
func (r *SimpleRegression) solve(x, y []float64) (intercept, slope float64, err error) {
	constant := true
	for _, v := range x[1:] {
		if v != x[0] {
			constant = false
			break
		}
	}
	if constant {
		return 0, 0, errors.NewModelError(modelName+".Fit", "feature has zero variance", errors.ErrSingularMatrix)
	}

	intercept, slope = stat.LinearRegression(x, y, nil, false)
	return intercept, slope, nil
}

// FeatureName は特徴量の列名を返す
func (r *SimpleRegression) FeatureName() string {
	if !r.IsFitted() {
		return ""
	}
	return r.featureName
}

// TargetName は目的変数の列名を返す
func (r *SimpleRegression) TargetName() string {
	if !r.IsFitted() {
		return ""
	}
	return r.targetName
}

// Intercept は学習された切片を返す
func (r *SimpleRegression) Intercept() float64 {
	if !r.IsFitted() {
		return 0
	}
	return r.intercept
}

// Slope は学習された傾きを返す
func (r *SimpleRegression) Slope() float64 {
	if !r.IsFitted() {
		return 0
	}
	return r.slope
}

// RSquared は決定係数を返す。目的変数の分散が0の場合は 0。
func (r *SimpleRegression) RSquared() float64 {
	if !r.IsFitted() {
		return 0
	}
	return r.rSquared
}

// MSE は学習データに対する平均二乗誤差を返す
func (r *SimpleRegression) MSE() float64 {
	if !r.IsFitted() {
		return 0
	}
	return r.mse
}

// Predictions は学習データの各行に対する予測値のコピーを返す
//
// レコードから読み込んだモデルは学習データを持たないため nil。
func (r *SimpleRegression) Predictions() []float64 {
	if !r.IsFitted() || r.predictions == nil {
		return nil
	}
	return append([]float64(nil), r.predictions...)
}

// Predict は単一の特徴量の値に対する予測値 intercept + slope*x を返す
func (r *SimpleRegression) Predict(x float64) (float64, error) {
	if err := r.RequireFitted(modelName, "Predict"); err != nil {
		return 0, err
	}
	if !errors.IsFinite(x) {
		return 0, errors.NewPredictionInputError(r.featureName, strconv.FormatFloat(x, 'g', -1, 64))
	}
	return r.intercept + r.slope*x, nil
}

// PredictText は入力テキストを数値として解釈して予測する
//
// 数値として解釈できない入力は PredictionInputError になる。
func (r *SimpleRegression) PredictText(s string) (float64, error) {
	if err := r.RequireFitted(modelName, "PredictText"); err != nil {
		return 0, err
	}
	v, err := r.ParseInput(s)
	if err != nil {
		fields := []any{
			log.OperationKey, log.OperationPredict,
			log.PhaseKey, log.PhaseInference,
			log.FeatureKey, r.featureName,
		}
		r.logger.Debug("prediction rejected", append(fields, log.ErrorFields(err)...)...)
		return 0, err
	}
	y, err := r.Predict(v)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("prediction",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.FeatureKey, r.featureName,
		log.TargetKey, r.targetName,
	)
	return y, nil
}

// ParseInput は入力テキストを有限の特徴量の値として解釈する
func (r *SimpleRegression) ParseInput(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !errors.IsFinite(v) {
		return 0, errors.NewPredictionInputError(r.FeatureName(), s)
	}
	return v, nil
}

// Equation は "<target> = <intercept> + <slope>*<feature>" 形式の式を返す
func (r *SimpleRegression) Equation() string {
	return fmt.Sprintf("%s = %.2f + %.2f*%s", r.TargetName(), r.Intercept(), r.Slope(), r.FeatureName())
}

// Record は保存用のレコードを返す
func (r *SimpleRegression) Record(description string) model.Record {
	return model.Record{
		Intercept:   r.Intercept(),
		Slope:       r.Slope(),
		RSquared:    r.RSquared(),
		MSE:         r.MSE(),
		FeatureName: r.FeatureName(),
		TargetName:  r.TargetName(),
		Description: description,
	}
}

// FromRecord はレコードから学習済みモデルを復元する
//
// 復元したモデルは学習データを持たないため、Predictions は nil、NSamples は 0。
func FromRecord(rec model.Record, opts ...Option) (*SimpleRegression, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	r := NewSimpleRegression(opts...)
	r.featureName = rec.FeatureName
	r.targetName = rec.TargetName
	r.intercept = rec.Intercept
	r.slope = rec.Slope
	r.rSquared = rec.RSquared
	r.mse = rec.MSE
	r.SetFitted(0)
	return r, nil
}
