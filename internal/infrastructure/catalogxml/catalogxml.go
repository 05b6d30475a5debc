// Package catalogxml carga sucursales y productos desde un archivo XML de catálogo.
// Acepta archivos en UTF-8 o ISO-8859-1 (exportaciones de sistemas POS antiguos).
//
// Formato:
//
//	<?xml version="1.0" encoding="ISO-8859-1"?>
//	<catalog>
//	  <branch name="Centro" location="Cali" size="120" total_stock="0"/>
//	  <product name="Arroz" stock="40" sell_price="3.50" cost="2.10" category_id="GR01" category="Granos"/>
//	</catalog>
package catalogxml

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/supermercado-api/internal/domain/entity"
	"github.com/jhoicas/supermercado-api/internal/domain/repository"
)

// Catalog contenido del archivo.
type Catalog struct {
	XMLName  xml.Name  `xml:"catalog"`
	Branches []Branch  `xml:"branch"`
	Products []Product `xml:"product"`
}

// Branch sucursal tal como viene en el XML; los valores se validan al insertar.
type Branch struct {
	Name       string `xml:"name,attr"`
	Location   string `xml:"location,attr"`
	Size       string `xml:"size,attr"`
	TotalStock string `xml:"total_stock,attr"`
}

// Product producto tal como viene en el XML.
type Product struct {
	Name       string `xml:"name,attr"`
	Stock      string `xml:"stock,attr"`
	SellPrice  string `xml:"sell_price,attr"`
	Cost       string `xml:"cost,attr"`
	CategoryID string `xml:"category_id,attr"`
	Category   string `xml:"category,attr"`
}

// Summary resultado de una importación.
type Summary struct {
	Branches int
	Products int
	Skipped  int
}

// Decode lee el catálogo. Los atributos se recortan.
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToUpper(charset) {
		case "ISO-8859-1", "ISO8859-1", "LATIN1":
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		case "WINDOWS-1252", "CP1252":
			return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
		case "UTF-8", "":
			return input, nil
		}
		return nil, fmt.Errorf("charset no soportado %q", charset)
	}
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &c, nil
}

// Import inserta el catálogo en una sola unidad de trabajo: si una fila falla, no queda nada.
// Las filas cuyo nombre ya existe se omiten, así que reimportar el mismo archivo es seguro.
func Import(ctx context.Context, runner repository.TxRunner, repo repository.EntityRepository, c *Catalog) (Summary, error) {
	var sum Summary
	err := runner.Run(ctx, func(ctx context.Context) error {
		sum = Summary{}
		for i, b := range c.Branches {
			created, err := createIfMissing(ctx, repo, entity.KindBranch, entity.Fields{
				entity.ColName:       strings.TrimSpace(b.Name),
				entity.ColLocation:   strings.TrimSpace(b.Location),
				entity.ColSize:       strings.TrimSpace(b.Size),
				entity.ColTotalStock: strings.TrimSpace(b.TotalStock),
			})
			if err != nil {
				return fmt.Errorf("branch[%d] %q: %w", i, b.Name, err)
			}
			sum.add(created, &sum.Branches)
		}
		for i, p := range c.Products {
			created, err := createIfMissing(ctx, repo, entity.KindProduct, entity.Fields{
				entity.ColName:       strings.TrimSpace(p.Name),
				entity.ColStock:      strings.TrimSpace(p.Stock),
				entity.ColSellPrice:  strings.TrimSpace(p.SellPrice),
				entity.ColCost:       strings.TrimSpace(p.Cost),
				entity.ColCategoryID: strings.TrimSpace(p.CategoryID),
				entity.ColCategory:   strings.TrimSpace(p.Category),
			})
			if err != nil {
				return fmt.Errorf("product[%d] %q: %w", i, p.Name, err)
			}
			sum.add(created, &sum.Products)
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func (s *Summary) add(created bool, counter *int) {
	if created {
		*counter++
		return
	}
	s.Skipped++
}

func createIfMissing(ctx context.Context, repo repository.EntityRepository, kind entity.Kind, fields entity.Fields) (bool, error) {
	existing, err := repo.List(ctx, kind, entity.Filters{entity.ColName: fields[entity.ColName]}, 0, 1)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if _, err := repo.Create(ctx, kind, fields); err != nil {
		return false, err
	}
	return true, nil
}
