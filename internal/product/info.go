// Package product 提供 Z-Wave Alliance 产品元数据的读取与适配。
package product

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/taoyao-code/zwave-configurator/internal/zwave"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrParameterNotFound = errors.New("parameter not found")
	ErrGroupNotFound     = errors.New("association group not found")
)

// DefaultImageType 产品库默认产品图片类型
const DefaultImageType = 21

const productPictureDocument = "Product Picture"

// CommandClass 命令类
type CommandClass struct {
	Name       string `json:"Name" yaml:"Name"`
	Identifier string `json:"Identifier" yaml:"Identifier"`
}

// AssociationGroup 产品库中的关联组
type AssociationGroup struct {
	Description  string `json:"Description" yaml:"Description"`
	GroupNumber  int    `json:"GroupNumber" yaml:"GroupNumber"`
	MaximumNodes int    `json:"MaximumNodes" yaml:"MaximumNodes"`
	EndpointID   int    `json:"endpoint_id" yaml:"endpoint_id"`
	GroupName    string `json:"group_name" yaml:"group_name"`
	Profile      string `json:"profile" yaml:"profile"`
}

// ConfigurationParameterValue 参数取值区间
type ConfigurationParameterValue struct {
	From                int    `json:"From" yaml:"From"`
	To                  int    `json:"To" yaml:"To"`
	Description         string `json:"Description" yaml:"Description"`
	DescriptionJSONSafe string `json:"DescriptionJSONSafe" yaml:"DescriptionJSONSafe"`
}

// ConfigurationParameter 产品库中的配置参数
type ConfigurationParameter struct {
	Name            string                        `json:"Name" yaml:"Name"`
	Description     string                        `json:"Description" yaml:"Description"`
	ParameterNumber int                           `json:"ParameterNumber" yaml:"ParameterNumber"`
	Size            int                           `json:"Size" yaml:"Size"`
	DefaultValue    int                           `json:"DefaultValue" yaml:"DefaultValue"`
	ReadOnly        bool                          `json:"flagReadOnly" yaml:"flagReadOnly"`
	ReInclude       bool                          `json:"flagReInclude" yaml:"flagReInclude"`
	Advanced        bool                          `json:"flagAdvanced" yaml:"flagAdvanced"`
	MinValue        int                           `json:"minValue" yaml:"minValue"`
	MaxValue        int                           `json:"maxValue" yaml:"maxValue"`
	Values          []ConfigurationParameterValue `json:"ConfigurationParameterValues" yaml:"ConfigurationParameterValues"`
}

// Spec 转换为核心计算使用的参数定义
func (p ConfigurationParameter) Spec() zwave.ParameterSpec {
	ranges := make([]zwave.ValueRange, 0, len(p.Values))
	for _, v := range p.Values {
		label := v.DescriptionJSONSafe
		if label == "" {
			label = v.Description
		}
		ranges = append(ranges, zwave.ValueRange{From: v.From, To: v.To, Label: label})
	}
	return zwave.ParameterSpec{
		Number:      p.ParameterNumber,
		Name:        p.Name,
		Description: p.Description,
		Size:        p.Size,
		Default:     p.DefaultValue,
		Ranges:      ranges,
	}
}

// Feature 产品特性
type Feature struct {
	FeatureID          int    `json:"feature_Id" yaml:"feature_Id"`
	ProductID          int    `json:"product_Id" yaml:"product_Id"`
	FeatureType        string `json:"feature_Type" yaml:"feature_Type"`
	FeatureName        string `json:"featureName" yaml:"featureName"`
	FeatureDescription string `json:"featureDescription" yaml:"featureDescription"`
}

// Document 产品文档（图片、手册等）
type Document struct {
	ID          int    `json:"Id" yaml:"Id"`
	ProductID   int    `json:"product_id" yaml:"product_id"`
	Type        int    `json:"Type" yaml:"Type"`
	Description string `json:"description" yaml:"description"`
	Value       string `json:"value" yaml:"value"`
	NotPublic   bool   `json:"not_public" yaml:"not_public"`
}

// Text 产品文字说明
type Text struct {
	ID          int    `json:"Id" yaml:"Id"`
	ProductID   int    `json:"product_id" yaml:"product_id"`
	Type        int    `json:"Type" yaml:"Type"`
	Description string `json:"description" yaml:"description"`
	Value       string `json:"value" yaml:"value"`
}

// Info 产品库 /products/<id>/JSON 的返回结构（只保留本服务使用的字段）
type Info struct {
	ID                      int                      `json:"Id" yaml:"Id"`
	Name                    string                   `json:"Name" yaml:"Name"`
	Description             string                   `json:"Description" yaml:"Description"`
	DescriptionShort        string                   `json:"Description_Short" yaml:"Description_Short"`
	Brand                   string                   `json:"Brand" yaml:"Brand"`
	Identifier              string                   `json:"Identifier" yaml:"Identifier"`
	CertificationNumber     string                   `json:"CertificationNumber" yaml:"CertificationNumber"`
	ZWaveVersion            string                   `json:"ZWaveVersion" yaml:"ZWaveVersion"`
	DeviceType              string                   `json:"DeviceType" yaml:"DeviceType"`
	RoleType                string                   `json:"RoleType" yaml:"RoleType"`
	ManufacturerID          string                   `json:"ManufacturerId" yaml:"ManufacturerId"`
	ProductTypeID           string                   `json:"ProductTypeId" yaml:"ProductTypeId"`
	ProductID               string                   `json:"ProductId" yaml:"ProductId"`
	Frequencies             []string                 `json:"Frequencies" yaml:"Frequencies"`
	ProductURL              string                   `json:"ProductUrl" yaml:"ProductUrl"`
	SupportURL              string                   `json:"SupportUrl" yaml:"SupportUrl"`
	Categories              []string                 `json:"Categories" yaml:"Categories"`
	SupportedCommandClasses []CommandClass           `json:"SupportedCommandClasses" yaml:"SupportedCommandClasses"`
	AssociationGroupList    []AssociationGroup       `json:"AssociationGroups" yaml:"AssociationGroups"`
	ConfigurationParameters []ConfigurationParameter `json:"ConfigurationParameters" yaml:"ConfigurationParameters"`
	Features                []Feature                `json:"Features" yaml:"Features"`
	Documents               []Document               `json:"Documents" yaml:"Documents"`
	Texts                   []Text                   `json:"Texts" yaml:"Texts"`
	SupportsSmartStart      bool                     `json:"Supports_SmartStart" yaml:"Supports_SmartStart"`
}

// Manufacturer 产品的厂商三元组
func (i *Info) Manufacturer() zwave.ManufacturerHex {
	return zwave.ManufacturerHex{
		ManufacturerID: i.ManufacturerID,
		ProductTypeID:  i.ProductTypeID,
		ProductID:      i.ProductID,
	}
}

// Matches 设备上报的厂商信息是否与产品一致（忽略大小写）
func (i *Info) Matches(h zwave.ManufacturerHex) bool {
	return i.Manufacturer().Equal(h)
}

// Parameters 全部参数定义（按参数号升序）
func (i *Info) Parameters() []zwave.ParameterSpec {
	out := make([]zwave.ParameterSpec, 0, len(i.ConfigurationParameters))
	for _, p := range i.ConfigurationParameters {
		out = append(out, p.Spec())
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Number < out[b].Number })
	return out
}

// ParameterNumbers 全部参数号（升序）
func (i *Info) ParameterNumbers() []int {
	specs := i.Parameters()
	out := make([]int, len(specs))
	for k, s := range specs {
		out[k] = s.Number
	}
	return out
}

// Parameter 查找参数定义
func (i *Info) Parameter(number int) (zwave.ParameterSpec, error) {
	for _, p := range i.ConfigurationParameters {
		if p.ParameterNumber == number {
			return p.Spec(), nil
		}
	}
	return zwave.ParameterSpec{}, fmt.Errorf("product %d parameter %d: %w", i.ID, number, ErrParameterNotFound)
}

func (g AssociationGroup) spec() zwave.AssociationGroupSpec {
	name := g.GroupName
	if name == "" {
		name = fmt.Sprintf("Group %d", g.GroupNumber)
	}
	return zwave.AssociationGroupSpec{
		Number:      g.GroupNumber,
		MaxNodes:    g.MaximumNodes,
		Name:        name,
		Description: g.Description,
	}
}

// AssociationGroups 全部关联组（按组号升序）
func (i *Info) AssociationGroups() []zwave.AssociationGroupSpec {
	out := make([]zwave.AssociationGroupSpec, 0, len(i.AssociationGroupList))
	for _, g := range i.AssociationGroupList {
		out = append(out, g.spec())
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Number < out[b].Number })
	return out
}

// AssociationGroup 查找关联组定义
func (i *Info) AssociationGroup(number int) (zwave.AssociationGroupSpec, error) {
	for _, g := range i.AssociationGroupList {
		if g.GroupNumber == number {
			return g.spec(), nil
		}
	}
	return zwave.AssociationGroupSpec{}, fmt.Errorf("product %d group %d: %w", i.ID, number, ErrGroupNotFound)
}

// ProductPicture 产品图片地址：优先使用 "Product Picture" 文档，否则使用默认图片类型
func (i *Info) ProductPicture(imageBase string) string {
	for _, d := range i.Documents {
		if strings.EqualFold(d.Description, productPictureDocument) {
			productID := d.ProductID
			if productID == 0 {
				productID = i.ID
			}
			return ImageURL(imageBase, productID, d.Type)
		}
	}
	return ImageURL(imageBase, i.ID, DefaultImageType)
}

// ImageURL 产品库图片地址 <base>?prod=<id>&which=<type>
func ImageURL(imageBase string, productID, imageType int) string {
	return fmt.Sprintf("%s?prod=%d&which=%d", strings.TrimRight(imageBase, "/"), productID, imageType)
}
