package store

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/quantscope/macdscan/internal/market"
	"github.com/shopspring/decimal"
)

// LoadSymbols reads the symbol universe from a csv export. The header must
// contain SECURITY_CODE and SECURITY_SHORT_NAME columns; any other columns
// are ignored.
func LoadSymbols(path string) ([]market.Symbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open symbols file: %w", err)
	}
	defer f.Close()

	return ReadSymbols(f)
}

func ReadSymbols(r io.Reader) ([]market.Symbol, error) {
	rdr := csv.NewReader(bufio.NewReader(r))

	header, err := rdr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read symbols header: %w", err)
	}

	codeCol, nameCol := -1, -1
	for i, col := range header {
		switch col {
		case "SECURITY_CODE":
			codeCol = i
		case "SECURITY_SHORT_NAME":
			nameCol = i
		}
	}
	if codeCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("symbols header missing SECURITY_CODE or SECURITY_SHORT_NAME: %v", header)
	}

	var symbols []market.Symbol
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read symbol row: %w", err)
		}

		symbols = append(symbols, market.Symbol{
			Code: rec[codeCol],
			Name: rec[nameCol],
		})
	}

	return symbols, nil
}

// ReadBars parses a bar csv (unix timestamp, open, high, low, close, volume
// after a header row) into a bar series.
func ReadBars(r io.Reader) ([]market.Bar, error) {
	rdr := csv.NewReader(bufio.NewReader(r))

	if _, err := rdr.Read(); err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var bars []market.Bar
	for {
		data, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read bar data: %w", err)
		}

		timestamp, err := strconv.ParseFloat(data[0], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bar time: %w", err)
		}

		open, err := decimal.NewFromString(data[1])
		if err != nil {
			return nil, fmt.Errorf("failed to read open price: %w", err)
		}

		high, err := decimal.NewFromString(data[2])
		if err != nil {
			return nil, fmt.Errorf("failed to read high price: %w", err)
		}

		low, err := decimal.NewFromString(data[3])
		if err != nil {
			return nil, fmt.Errorf("failed to read low price: %w", err)
		}

		close, err := decimal.NewFromString(data[4])
		if err != nil {
			return nil, fmt.Errorf("failed to read close price: %w", err)
		}

		volume, err := decimal.NewFromString(data[5])
		if err != nil {
			return nil, fmt.Errorf("failed to read volume: %w", err)
		}

		bars = append(bars, market.Bar{
			Date:   market.Day(time.Unix(int64(timestamp), 0).UTC()),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: volume,
		})
	}

	return bars, nil
}

// LoadBars reads a bar csv from disk.
func LoadBars(path string) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open bars file: %w", err)
	}
	defer f.Close()

	return ReadBars(f)
}
