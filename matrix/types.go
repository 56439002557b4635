package matrix

// Matrix is a rows×cols grid of float64 values addressed by (row, col).
//
// In lineseq a cost matrix is square: At(i, j) is the changeover in minutes
// from batch i to batch j, possibly +Inf for a forbidden transition.
// Implementations return ErrIndexOutOfBounds for indices outside the grid.
type Matrix interface {
	// Rows is the number of rows.
	Rows() int

	// Cols is the number of columns.
	Cols() int

	// At returns the value at (row, col).
	At(row, col int) (float64, error)

	// Set stores v at (row, col).
	Set(row, col int, v float64) error
}
