// Package log defines standard attribute keys for dataexplorer operations.
//
// Using these keys keeps log records from the preprocessing, regression and
// I/O layers consistent, so a run can be followed from the loaded source to
// the saved model. Keys use a hierarchical naming convention
// ("model.name", "data.samples").

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	// Examples: "SimpleRegression", "MissingValueProcessor"
	ModelNameKey = "model.name"

	// EstimatorIDKey provides a unique identifier for a specific model instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "preprocess", "check_missing", "load", "save", "plot"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "linear", "preprocessing", "dataio"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the pipeline.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of rows processed.
	SamplesKey = "data.samples"

	// SamplesOutKey indicates the number of rows produced, e.g. after row deletion.
	SamplesOutKey = "data.samples_out"

	// ColumnsKey lists the column names involved in the operation.
	ColumnsKey = "data.columns"

	// FeatureKey names the feature column of a regression.
	FeatureKey = "data.feature"

	// TargetKey names the target column of a regression.
	TargetKey = "data.target"

	// MissingKey reports the number of missing entries found.
	MissingKey = "data.missing"

	// FingerprintKey is the xxhash64 fingerprint of a table snapshot.
	FingerprintKey = "data.fingerprint"

	// SourceKey is the path or name of the data source.
	SourceKey = "data.source"
)

// Performance and Model Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records the coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// MSEKey records the mean squared error over the training sample.
	MSEKey = "metrics.mse"

	// InterceptKey records the fitted intercept.
	InterceptKey = "model.intercept"

	// SlopeKey records the fitted slope.
	SlopeKey = "model.slope"
)

// Preprocessing
const (
	// StrategyKey records the imputation strategy.
	StrategyKey = "preprocess.strategy"

	// ConstantKey records the fill constant of a constant imputation.
	ConstantKey = "preprocess.constant"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationPreprocess   = "preprocess"
	OperationCheckMissing = "check_missing"
	OperationLoad         = "load"
	OperationSave         = "save"
	OperationPlot         = "plot"

	PhaseLoading       = "loading"
	PhasePreprocessing = "preprocessing"
	PhaseTraining      = "training"
	PhaseInference     = "inference"
	PhasePersistence   = "persistence"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
