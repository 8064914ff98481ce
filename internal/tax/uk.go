// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tax

import (
	"fmt"
	"time"
)

// TaxYear is a UK tax year (6 April to 5 April), identified by its end
// year: TaxYear(2025) is "2024/25".
type TaxYear int

// TaxYearFromDate classifies a date into its UK tax year. 5 April falls in
// the tax year ending that April; 6 April falls in the tax year ending the
// following April.
func TaxYearFromDate(d time.Time) TaxYear {
	year := d.Year()
	boundary := time.Date(year, time.April, 6, 0, 0, 0, 0, time.UTC)
	if !d.Before(boundary) {
		return TaxYear(year + 1)
	}
	return TaxYear(year)
}

// StartDate is 6 April of the preceding calendar year.
func (y TaxYear) StartDate() time.Time {
	return time.Date(int(y)-1, time.April, 6, 0, 0, 0, 0, time.UTC)
}

// EndDate is 5 April of the tax year's end year.
func (y TaxYear) EndDate() time.Time {
	return time.Date(int(y), time.April, 5, 0, 0, 0, 0, time.UTC)
}

// String renders as "2024/25".
func (y TaxYear) String() string {
	return fmt.Sprintf("%d/%02d", int(y)-1, int(y)%100)
}
