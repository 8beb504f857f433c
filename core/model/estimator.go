package model

import "github.com/YuminosukeSato/dataexplorer/core/table"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit は特徴量列と目的変数列でモデルを学習させる
	Fit(feature, target *table.Column) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は単一の入力値に対する予測を行う
	Predict(x float64) (float64, error)
}

// LinearModel は単回帰モデルのインターフェース
type LinearModel interface {
	Fitter
	Predictor
	// Intercept は学習された切片を返す
	Intercept() float64
	// Slope は学習された傾きを返す
	Slope() float64
	// RSquared は学習データに対する決定係数（R²）を返す
	RSquared() float64
	// Record は永続化用のレコードを返す
	Record(description string) Record
}
