// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 欠損値処理と回帰の各段階で発生する失敗を、区別可能な型付きエラーとして表現します。
package errors

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = defaultWarningHandler
	// デフォルトハンドラの出力先
	warningOutput io.Writer = os.Stderr
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// defaultWarningHandler は警告を zerolog のコンソール形式で warningOutput に出す
func defaultWarningHandler(w error) {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: warningOutput, NoColor: true}).
		With().Timestamp().Str("component", "dataexplorer").Logger()
	ev := zl.Warn()
	if m, ok := w.(zerolog.LogObjectMarshaler); ok {
		ev = ev.Object("warning", m)
	}
	ev.Msg(w.Error())
}

// SetWarningHandler は警告ハンドラを設定します。
// nil を渡すとデフォルトのハンドラに戻ります。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	if handler == nil {
		handler = defaultWarningHandler
	}
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	warningHandler(w)
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// DataConversionWarning はデータの型が暗黙的に変換された場合に発生する警告です。
type DataConversionWarning struct {
	Column   string
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("column '%s' converted from %s to %s. Reason: %s", w.Column, w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning は新しいDataConversionWarningを作成します。
func NewDataConversionWarning(column, from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{Column: column, FromType: from, ToType: to, Reason: reason}
}

// UndefinedMetricWarning は評価指標が計算できない場合に発生する警告です。
// 例えば、目的変数の分散が0のときの決定係数など。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` などを呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("dataexplorer: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// AlreadyFittedError は学習済みモデルに対して再度 `Fit` を呼び出した場合のエラーです。
// モデルは学習後に不変であり、再学習には新しいインスタンスを作成します。
type AlreadyFittedError struct {
	ModelName string
}

func (e *AlreadyFittedError) Error() string {
	return fmt.Sprintf("dataexplorer: %s: model is already fitted. Create a new instance to fit other data", e.ModelName)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *AlreadyFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("type", "AlreadyFittedError")
}

// NewAlreadyFittedError は新しいAlreadyFittedErrorを作成し、スタックトレースを付与します。
func NewAlreadyFittedError(modelName string) error {
	return errors.WithStack(&AlreadyFittedError{ModelName: modelName})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dataexplorer: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "columns"
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError の Reason に使う定型の理由。
const (
	// ReasonLengthMismatch は特徴量と目的変数の長さが異なることを示します。
	ReasonLengthMismatch = "length mismatch"
	// ReasonEmptyInput は長さ0の入力を示します。
	ReasonEmptyInput = "empty input"
	// ReasonUnknownColumn は存在しない列名を示します。
	ReasonUnknownColumn = "unknown column"
	// ReasonDuplicateColumn は重複した列名を示します。
	ReasonDuplicateColumn = "duplicate column"
	// ReasonInvalidValue は不正な値を示します。
	ReasonInvalidValue = "invalid value"
)

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
// `ValueError`よりも具体的なバリデーションロジックの失敗を示します。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dataexplorer: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// HasReason はerrがReasonを持つValidationErrorかどうかを判定します。
func HasReason(err error, reason string) bool {
	var verr *ValidationError
	return errors.As(err, &verr) && verr.Reason == reason
}

// TypeError は数値が必要な箇所に非数値（テキスト列や欠損値）が渡された場合のエラーです。
// 暗黙の数値変換は行いません。
type TypeError struct {
	Op       string
	Column   string
	Expected string
	Got      string
}

func (e *TypeError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("dataexplorer: %s: column '%s' must be %s, got %s", e.Op, e.Column, e.Expected, e.Got)
	}
	return fmt.Sprintf("dataexplorer: %s: expected %s, got %s", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *TypeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Str("expected", e.Expected).
		Str("got", e.Got).
		Str("type", "TypeError")
}

// NewTypeError は新しいTypeErrorを作成し、スタックトレースを付与します。
func NewTypeError(op, column, expected, got string) error {
	return errors.WithStack(&TypeError{Op: op, Column: column, Expected: expected, Got: got})
}

// ConstantValueError は定数補完が指定されたのに、有効な数値定数が与えられなかった場合のエラーです。
type ConstantValueError struct {
	Input string // 受け取った入力（未指定なら空）
}

func (e *ConstantValueError) Error() string {
	if e.Input == "" {
		return "dataexplorer: a numeric constant is required to fill missing values"
	}
	return fmt.Sprintf("dataexplorer: a numeric constant is required to fill missing values (got: %q)", e.Input)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConstantValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("input", e.Input).
		Str("type", "ConstantValueError")
}

// NewConstantValueError は新しいConstantValueErrorを作成し、スタックトレースを付与します。
func NewConstantValueError(input string) error {
	return errors.WithStack(&ConstantValueError{Input: input})
}

// PredictionInputError は予測に使えない値（非数値、NaN、Inf）が渡された場合のエラーです。
type PredictionInputError struct {
	Feature string
	Input   string
}

func (e *PredictionInputError) Error() string {
	return fmt.Sprintf("dataexplorer: invalid value for feature '%s': %q is not a finite number", e.Feature, e.Input)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *PredictionInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("feature", e.Feature).
		Str("input", e.Input).
		Str("type", "PredictionInputError")
}

// NewPredictionInputError は新しいPredictionInputErrorを作成し、スタックトレースを付与します。
func NewPredictionInputError(feature, input string) error {
	return errors.WithStack(&PredictionInputError{Feature: feature, Input: input})
}

// EmptySelectionError は列が一つも選択されていない状態で処理を要求された場合のエラーです。
type EmptySelectionError struct {
	Op string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("dataexplorer: %s: no columns selected", e.Op)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *EmptySelectionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("type", "EmptySelectionError")
}

// NewEmptySelectionError は新しいEmptySelectionErrorを作成し、スタックトレースを付与します。
func NewEmptySelectionError(op string) error {
	return errors.WithStack(&EmptySelectionError{Op: op})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("dataexplorer: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError はモデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dataexplorer: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("dataexplorer: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// RecordKeysError は保存済みモデルのキー集合が期待と一致しない場合のエラーです。
// 不足キーと余分なキーの両方をまとめて報告します。
type RecordKeysError struct {
	Missing []string
	Extra   []string
}

func (e *RecordKeysError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("Missing required keys: %s.", strings.Join(e.Missing, ", ")))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("Unexpected extra keys: %s.", strings.Join(e.Extra, ", ")))
	}
	return "dataexplorer: invalid model record: " + strings.Join(parts, " ")
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *RecordKeysError) MarshalZerologObject(event *zerolog.Event) {
	event.Strs("missing", e.Missing).
		Strs("extra", e.Extra).
		Str("type", "RecordKeysError")
}

// NewRecordKeysError は新しいRecordKeysErrorを作成します。キーはソートされます。
func NewRecordKeysError(missing, extra []string) error {
	sort.Strings(missing)
	sort.Strings(extra)
	return errors.WithStack(&RecordKeysError{Missing: missing, Extra: extra})
}

// FormatError はサポートされていないファイル形式が指定された場合のエラーです。
type FormatError struct {
	Path      string
	Extension string
	Supported []string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("dataexplorer: invalid file format %q for %s (valid: %s)", e.Extension, e.Path, strings.Join(e.Supported, ", "))
}

// NewFormatError は新しいFormatErrorを作成し、スタックトレースを付与します。
func NewFormatError(path, extension string, supported []string) error {
	return errors.WithStack(&FormatError{Path: path, Extension: extension, Supported: supported})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")

	// ErrZeroVariance は分散が0で指標が定義できない場合のエラーです。
	ErrZeroVariance = New("zero variance")

	// ErrEmptySource はファイルやテーブルにデータが含まれていない場合のエラーです。
	ErrEmptySource = New("source does not contain data")

	// ErrNoPathSelected はファイルパスが指定されていない場合のエラーです。
	ErrNoPathSelected = New("no file selected")
)
