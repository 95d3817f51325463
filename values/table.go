package values

import (
	"errors"
	"io"

	"github.com/go-gota/gota/dataframe"

	"push_to_gdoc/filler"
)

// TableFromCSV reads a CSV whose first record is the header. Cells are kept
// as written: no type detection, and "NA" or "<nil>" are not read as NaN.
func TableFromCSV(r io.Reader) (filler.Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return filler.Table{}, df.Err
	}
	return TableFromDataFrame(df)
}

// TableFromDataFrame uses the frame's column names as the header row.
func TableFromDataFrame(df dataframe.DataFrame) (filler.Table, error) {
	if df.Err != nil {
		return filler.Table{}, df.Err
	}
	records := df.Records()
	if len(records) == 0 || len(records[0]) == 0 {
		return filler.Table{}, errors.New("dataframe has no columns")
	}
	return filler.Table{Columns: records[0], Rows: records[1:]}, nil
}
