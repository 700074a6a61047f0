// Package schema loads the tabular files that drive a form. A field schema
// has one row per question with the columns categoría, pregunta, tipo and
// opciones (plus an optional rol). CSV files are read with encoding/csv and
// workbooks with excelize; both yield the same Table shape so reference data
// such as the region table can reuse the loader.
package schema
