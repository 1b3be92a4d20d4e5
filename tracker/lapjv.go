package tracker

import (
	"errors"
)

// unassignedCost stands in for infinity during column reduction
const unassignedCost = 1e12

// solveLAP solves the dense linear assignment problem over an n x n cost
// matrix with the Jonker-Volgenant algorithm: column reduction, augmenting
// row reduction, then shortest augmenting paths for the remaining free rows.
// On return rowTo[i] is the column assigned to row i and colTo[j] the row
// assigned to column j.  Worst case O(n^3).
func solveLAP(n int, cost [][]float64, rowTo, colTo []int) error {
	freeRows := make([]int, n)
	colPrice := make([]float64, n)

	nFree := columnReduce(n, cost, freeRows, rowTo, colTo, colPrice)

	for i := 0; nFree > 0 && i < 2; i++ {
		nFree = augmentRowReduce(n, cost, nFree, freeRows, rowTo, colTo, colPrice)
	}

	if nFree > 0 {
		if err := augmentFreeRows(n, cost, nFree, freeRows, rowTo, colTo, colPrice); err != nil {
			return err
		}
	}

	return nil
}

// columnReduce assigns each column to its cheapest row and transfers
// reduction slack for rows that ended up uniquely assigned.  Returns the
// number of rows left unassigned, collected into freeRows.
func columnReduce(n int, cost [][]float64, freeRows, rowTo, colTo []int, colPrice []float64) int {
	unique := make([]bool, n)

	for i := 0; i < n; i++ {
		rowTo[i] = -1
		colPrice[i] = unassignedCost
		colTo[i] = 0
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if c := cost[i][j]; c < colPrice[j] {
				colPrice[j] = c
				colTo[j] = i
			}
		}
	}

	for i := range unique {
		unique[i] = true
	}

	for j := n - 1; j >= 0; j-- {
		i := colTo[j]
		if rowTo[i] < 0 {
			rowTo[i] = j
		} else {
			unique[i] = false
			colTo[j] = -1
		}
	}

	nFree := 0

	for i := 0; i < n; i++ {
		switch {
		case rowTo[i] < 0:
			freeRows[nFree] = i
			nFree++

		case unique[i]:
			// transfer slack to the assigned column
			j := rowTo[i]
			slack := unassignedCost

			for j2 := 0; j2 < n; j2++ {
				if j2 == j {
					continue
				}
				if c := cost[i][j2] - colPrice[j2]; c < slack {
					slack = c
				}
			}

			colPrice[j] -= slack
		}
	}

	return nFree
}

// augmentRowReduce reassigns free rows to their cheapest column, bumping the
// previous owner back onto the free list when that improves the column price
func augmentRowReduce(n int, cost [][]float64, nFree int, freeRows, rowTo, colTo []int, colPrice []float64) int {
	current := 0
	newFree := 0
	rounds := 0

	for current < nFree {
		rounds++
		row := freeRows[current]
		current++

		// find the two cheapest reduced costs in this row
		best := 0
		bestCost := cost[row][0] - colPrice[0]
		second := -1
		secondCost := unassignedCost

		for j := 1; j < n; j++ {
			c := cost[row][j] - colPrice[j]
			if c < secondCost {
				if c >= bestCost {
					secondCost = c
					second = j
				} else {
					secondCost = bestCost
					bestCost = c
					second = best
					best = j
				}
			}
		}

		owner := colTo[best]
		loweredPrice := colPrice[best] - (secondCost - bestCost)
		lowers := loweredPrice < colPrice[best]

		if rounds < current*n {
			if lowers {
				colPrice[best] = loweredPrice
			} else if owner >= 0 && second >= 0 {
				best = second
				owner = colTo[second]
			}

			if owner >= 0 {
				if lowers {
					current--
					freeRows[current] = owner
				} else {
					freeRows[newFree] = owner
					newFree++
				}
			}
		} else if owner >= 0 {
			freeRows[newFree] = owner
			newFree++
		}

		rowTo[row] = best
		colTo[best] = row
	}

	return newFree
}

// augmentFreeRows runs a shortest augmenting path from every remaining free
// row and flips the assignments along the path
func augmentFreeRows(n int, cost [][]float64, nFree int, freeRows, rowTo, colTo []int, colPrice []float64) error {
	pred := make([]int, n)

	for _, freeRow := range freeRows[:nFree] {
		endCol := shortestAugmentingPath(n, cost, freeRow, colTo, colPrice, pred)

		if endCol < 0 || endCol >= n {
			return errors.New("assignment augmentation failed to reach a free column")
		}

		i := -1
		for steps := 0; i != freeRow; steps++ {
			if steps >= n {
				return errors.New("assignment augmentation path exceeded matrix size")
			}

			i = pred[endCol]
			colTo[endCol] = i
			endCol, rowTo[i] = rowTo[i], endCol
		}
	}

	return nil
}

// shortestAugmentingPath is one iteration of the modified Dijkstra search
// from the JV paper over a dense matrix, returning the free column reached
func shortestAugmentingPath(n int, cost [][]float64, startRow int, colTo []int, colPrice []float64, pred []int) int {
	lo, hi := 0, 0
	nReady := 0
	endCol := -1

	cols := make([]int, n)
	dist := make([]float64, n)

	for j := 0; j < n; j++ {
		cols[j] = j
		pred[j] = startRow
		dist[j] = cost[startRow][j] - colPrice[j]
	}

	for endCol == -1 {
		if lo == hi {
			// nothing left to scan: pull the nearest unscanned columns in
			nReady = lo
			hi = nearestColumns(n, lo, dist, cols)

			for k := lo; k < hi; k++ {
				if j := cols[k]; colTo[j] < 0 {
					endCol = j
				}
			}
		}

		if endCol == -1 {
			endCol = scanColumns(n, cost, &lo, &hi, dist, cols, pred, colTo, colPrice)
		}
	}

	// commit price updates for all columns settled during the search
	minDist := dist[cols[lo]]
	for k := 0; k < nReady; k++ {
		j := cols[k]
		colPrice[j] += dist[j] - minDist
	}

	return endCol
}

// nearestColumns partitions cols so [lo,hi) holds the columns with minimal
// tentative distance, returning the new hi
func nearestColumns(n, lo int, dist []float64, cols []int) int {
	hi := lo + 1
	minDist := dist[cols[lo]]

	for k := hi; k < n; k++ {
		j := cols[k]
		if dist[j] > minDist {
			continue
		}

		if dist[j] < minDist {
			hi = lo
			minDist = dist[j]
		}

		cols[k] = cols[hi]
		cols[hi] = j
		hi++
	}

	return hi
}

// scanColumns relaxes the unscanned columns through each settled column,
// returning a free column the moment one becomes reachable at minimal distance
func scanColumns(n int, cost [][]float64, lo, hi *int, dist []float64, cols, pred, colTo []int, colPrice []float64) int {
	for *lo != *hi {
		j := cols[*lo]
		*lo++

		i := colTo[j]
		minDist := dist[j]
		base := cost[i][j] - colPrice[j] - minDist

		for k := *hi; k < n; k++ {
			j = cols[k]

			reduced := cost[i][j] - colPrice[j] - base
			if reduced >= dist[j] {
				continue
			}

			dist[j] = reduced
			pred[j] = i

			if reduced == minDist {
				if colTo[j] < 0 {
					return j
				}

				cols[k] = cols[*hi]
				cols[*hi] = j
				*hi++
			}
		}
	}

	return -1
}
