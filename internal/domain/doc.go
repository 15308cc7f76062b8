// Package domain models NOAA STAR vegetation health (VHI) data for the
// administrative regions of Ukraine.
//
// # Data Source
//
// Weekly indices come from the NOAA STAR Global Vegetation Health Products
// "time series by province" endpoint, one file per region. The fetcher in
// [github.com/couchcryptid/vhi-dashboard/internal/adapter/noaa] stores each
// response in the data directory as
//
//	vhi_<code>_<Region>_<yyyymmddHHMMSS>.csv
//
// so the region's display name is the third underscore-delimited segment of
// the file name.
//
// # File Layout
//
//	line 1     metadata (province description), discarded
//	line 2     header, discarded and replaced by the fixed schema
//	line 3+    year, week, SMN, SMT, VCI, TCI, VHI
//
// Values are comma-separated, frequently space-padded, and NOAA terminates
// each row with a trailing comma. Column position is the contract: header
// text is never trusted.
//
// # Indices
//
//	SMN  smoothed NDVI
//	SMT  smoothed brightness temperature (K)
//	VCI  Vegetation Condition Index, 0..100
//	TCI  Temperature Condition Index, 0..100
//	VHI  Vegetation Health Index, 0..100 (combination of VCI and TCI)
//
// NOAA writes -1 for weeks without satellite coverage. Those values are numeric
// and are kept; only text that does not parse as a number is treated as
// missing.
//
// # Normalization
//
// A row survives only if year and VHI parse as numbers. VCI, TCI, SMN and SMT
// are carried as-is, including non-numeric text, see [Value].
package domain
