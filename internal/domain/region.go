package domain

import "sort"

// Region is one entry of the NOAA province table for Ukraine.
type Region struct {
	Code int    `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// regionTable lists NOAA province IDs. Names are kept byte-for-byte as
// published (note the backtick in "Kharkiv`") because source file names and
// region filters are matched exactly against them. Code 4 is Crimea; the
// published table repeats "Chernivtsi" there, which would make names ambiguous.
var regionTable = []Region{
	{1, "Cherkasy"},
	{2, "Chernihiv"},
	{3, "Chernivtsi"},
	{4, "Crimea"},
	{5, "Dnipropetrovs'k"},
	{6, "Donets'k"},
	{7, "Ivano-Frankivs'k"},
	{8, "Kharkiv`"},
	{9, "Kherson"},
	{10, "Khmel'nyts'kyy"},
	{11, "Kyiv"},
	{12, "Kyiv City"},
	{13, "Kirovohrad"},
	{14, "Luhans'k"},
	{15, "L'viv"},
	{16, "Mykolayiv"},
	{17, "Odessa"},
	{18, "Poltava"},
	{19, "Rivne"},
	{20, "Sevastopol"},
	{21, "Sumy"},
	{22, "Ternopil"},
	{23, "Transcarpathia"},
	{24, "Vinnytsya"},
	{25, "Volyn"},
	{26, "Zaporizhzhya"},
	{27, "Zhytomyr"},
}

// RegionCatalog is an immutable bidirectional code/name index.
type RegionCatalog struct {
	regions []Region
	byCode  map[int]string
	byName  map[string]int
}

// Catalog is the process-wide region table. It is never mutated.
var Catalog = NewRegionCatalog(regionTable)

// NewRegionCatalog indexes regions by code and by name. Later duplicates of a
// code or name are ignored so lookups stay deterministic.
func NewRegionCatalog(regions []Region) *RegionCatalog {
	c := &RegionCatalog{
		byCode: make(map[int]string, len(regions)),
		byName: make(map[string]int, len(regions)),
	}
	for _, r := range regions {
		if _, dup := c.byCode[r.Code]; dup {
			continue
		}
		if _, dup := c.byName[r.Name]; dup {
			continue
		}
		c.byCode[r.Code] = r.Name
		c.byName[r.Name] = r.Code
		c.regions = append(c.regions, r)
	}
	sort.Slice(c.regions, func(i, j int) bool { return c.regions[i].Code < c.regions[j].Code })
	return c
}

// Name returns the region name for a code.
func (c *RegionCatalog) Name(code int) (string, bool) {
	name, ok := c.byCode[code]
	return name, ok
}

// Code returns the code for an exact, case-sensitive region name.
func (c *RegionCatalog) Code(name string) (int, bool) {
	code, ok := c.byName[name]
	return code, ok
}

// Regions returns a copy of the catalog in ascending code order.
func (c *RegionCatalog) Regions() []Region {
	out := make([]Region, len(c.regions))
	copy(out, c.regions)
	return out
}

// Codes returns the region codes in ascending order.
func (c *RegionCatalog) Codes() []int {
	out := make([]int, len(c.regions))
	for i, r := range c.regions {
		out[i] = r.Code
	}
	return out
}

// Names returns region names in ascending code order.
func (c *RegionCatalog) Names() []string {
	out := make([]string, len(c.regions))
	for i, r := range c.regions {
		out[i] = r.Name
	}
	return out
}

func (c *RegionCatalog) Len() int { return len(c.regions) }
