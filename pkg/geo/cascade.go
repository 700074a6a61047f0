package geo

// Cascade is the current region/province/district selection. Empty strings
// mean "no selection".
type Cascade struct {
	Region   string
	Province string
	District string
}

// SelectRegion changes the region. Any downstream choice is cleared when the
// region actually changes.
func (c *Cascade) SelectRegion(region string) {
	if c.Region == region {
		return
	}
	c.Region = region
	c.Province = ""
	c.District = ""
}

// SelectProvince changes the province and clears the district when it
// changes.
func (c *Cascade) SelectProvince(province string) {
	if c.Province == province {
		return
	}
	c.Province = province
	c.District = ""
}

// SelectDistrict changes the district.
func (c *Cascade) SelectDistrict(district string) {
	c.District = district
}

// Normalize drops every selection that is not valid under its parents. It
// returns true when something was cleared.
func (c *Cascade) Normalize(r *Resolver) bool {
	changed := false
	if c.Region != "" && !contains(r.Regions(), c.Region) {
		c.Region = ""
		changed = true
	}
	if c.Province != "" && !contains(r.Provinces(c.Region), c.Province) {
		c.Province = ""
		changed = true
	}
	if c.District != "" && !contains(r.Districts(c.Region, c.Province), c.District) {
		c.District = ""
		changed = true
	}
	return changed
}

// ProvinceEnabled reports whether the province control accepts input.
func (c Cascade) ProvinceEnabled() bool {
	return c.Region != ""
}

// DistrictEnabled reports whether the district control accepts input.
func (c Cascade) DistrictEnabled() bool {
	return c.Province != ""
}
