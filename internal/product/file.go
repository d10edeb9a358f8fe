package product

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile YAML 产品库文件格式
type catalogFile struct {
	Products []Info `yaml:"products"`
}

// FileCatalog 从本地 YAML 文件加载的离线产品库（开发与内网部署使用）
type FileCatalog struct {
	products map[int]*Info
}

var _ Catalog = (*FileCatalog)(nil)

// LoadFileCatalog 读取 YAML 产品库文件
func LoadFileCatalog(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseFileCatalog(data)
}

// ParseFileCatalog 解析 YAML 内容，产品编号必须唯一且大于 0
func ParseFileCatalog(data []byte) (*FileCatalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &FileCatalog{products: make(map[int]*Info, len(f.Products))}
	for i := range f.Products {
		p := f.Products[i]
		if p.ID <= 0 {
			return nil, fmt.Errorf("catalog entry %d: invalid product id %d", i, p.ID)
		}
		if _, dup := c.products[p.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate product id %d", i, p.ID)
		}
		c.products[p.ID] = &p
	}
	return c, nil
}

// Product 查询产品，返回副本
func (c *FileCatalog) Product(ctx context.Context, id int) (*Info, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	cp := *p
	return &cp, nil
}

// Len 产品数量
func (c *FileCatalog) Len() int { return len(c.products) }
