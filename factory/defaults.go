/*
defaults.go - Built-in statutory figures for quick starts

The server boots from these when no config file is given. They are the
published monthly figures; weekly and biweekly runs need a bundle that
publishes tables for those frequencies.
*/
package factory

// DefaultBundleJSON is the built-in configuration, kept as JSON so the
// built-in path and the file path exercise the same parser.
const DefaultBundleJSON = `{
  "isr_tables": [
    {
      "fiscal_year": 2025,
      "frequency": "monthly",
      "rows": [
        {"lower": "0.01", "upper": "746.04", "base": "0", "rate": "0.0192"},
        {"lower": "746.05", "upper": "6332.05", "base": "14.32", "rate": "0.064"},
        {"lower": "6332.06", "upper": "11128.01", "base": "371.83", "rate": "0.1088"},
        {"lower": "11128.02", "upper": "12935.82", "base": "893.63", "rate": "0.16"},
        {"lower": "12935.83", "upper": "15487.71", "base": "1182.88", "rate": "0.1792"},
        {"lower": "15487.72", "upper": "31236.49", "base": "1640.18", "rate": "0.2136"},
        {"lower": "31236.50", "upper": "49233.00", "base": "5004.12", "rate": "0.2352"},
        {"lower": "49233.01", "upper": "93993.90", "base": "9236.89", "rate": "0.30"},
        {"lower": "93993.91", "upper": "125325.20", "base": "22665.17", "rate": "0.32"},
        {"lower": "125325.21", "upper": "375975.61", "base": "32691.18", "rate": "0.34"},
        {"lower": "375975.62", "base": "117912.32", "rate": "0.35"}
      ]
    }
  ],
  "subsidy_tables": [
    {
      "fiscal_year": 2025,
      "frequency": "monthly",
      "rows": [
        {"lower": "0.01", "upper": "1768.96", "base": "407.02", "rate": "0"},
        {"lower": "1768.97", "upper": "2653.38", "base": "406.83", "rate": "0"},
        {"lower": "2653.39", "upper": "3472.84", "base": "406.62", "rate": "0"},
        {"lower": "3472.85", "upper": "3537.87", "base": "392.77", "rate": "0"},
        {"lower": "3537.88", "upper": "4446.15", "base": "382.46", "rate": "0"},
        {"lower": "4446.16", "upper": "4717.18", "base": "354.23", "rate": "0"},
        {"lower": "4717.19", "upper": "5335.42", "base": "324.87", "rate": "0"},
        {"lower": "5335.43", "upper": "6224.67", "base": "294.63", "rate": "0"},
        {"lower": "6224.68", "upper": "7113.90", "base": "253.54", "rate": "0"},
        {"lower": "7113.91", "upper": "7382.33", "base": "217.61", "rate": "0"},
        {"lower": "7382.34", "base": "0", "rate": "0"}
      ]
    }
  ],
  "imss_parameters": [
    {
      "fiscal_year": 2025,
      "uma_daily": "113.14",
      "minimum_wage": "278.80",
      "cap_uma_units": 25,
      "worker": {
        "sickness_maternity_excess": "0.0040",
        "disability_life": "0.00625",
        "retirement": "0.01125"
      },
      "employer": {
        "sickness_maternity_fixed": "0.2040",
        "sickness_maternity_excess": "0.0110",
        "disability_life": "0.0175",
        "retirement": "0.0515",
        "nursery": "0.01",
        "housing": "0.05",
        "occupational_risk": "0.005"
      }
    }
  ],
  "vacation": {"base": [12, 14, 16, 18, 20], "plateau_step": 2, "plateau_every": 5},
  "plans": {
    "statutory": {"aguinaldo_days": 15, "vacation_premium_rate": "0.25"},
    "enhanced": {"aguinaldo_days": 30, "vacation_premium_rate": "0.50", "extra_vacation_days": 5}
  }
}`

// DefaultBundle returns the built-in configuration, registered and
// validated. It panics on error: the constant above is part of the
// build, and a broken build should not limp along.
func DefaultBundle() *Bundle {
	bundle, err := NewConfigFactory().ParseBundle(DefaultBundleJSON)
	if err != nil {
		panic("factory: built-in bundle is invalid: " + err.Error())
	}
	return bundle
}
