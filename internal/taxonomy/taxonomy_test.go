package taxonomy

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
 "areaClasses": {
  "largeClasses": [
   {"largeClass": [
     {"largeClassCode": "japan", "largeClassName": "日本"},
     {"middleClasses": [
       {"middleClass": [
         {"middleClassCode": "miyagi", "middleClassName": "宮城県"},
         {"smallClasses": [
           {"smallClass": [
             {"smallClassCode": "sendai", "smallClassName": "仙台"},
             {"detailClasses": [
               {"detailClass": {"detailClassCode": "A", "detailClassName": "仙台駅東口・宮城野"}},
               {"detailClass": {"detailClassCode": "B", "detailClassName": "国分町・定禅寺通"}}
             ]}
           ]},
           {"smallClass": [
             {"smallClassCode": "matsushima", "smallClassName": "松島・塩釜"}
           ]},
           {"smallClass": [
             {"smallClassCode": "naruko", "smallClassName": "鳴子"},
             {}
           ]}
         ]}
       ]},
       {"middleClass": [
         {"middleClassCode": "empty", "middleClassName": "空"}
       ]}
     ]}
   ]},
   {"largeClass": [
     {"largeClassCode": "lonely", "largeClassName": "孤立"}
   ]}
  ]
 }
}`

func TestRead_FlattensInDocumentOrder(t *testing.T) {
	recs, err := Read(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, Record{
		LargeCode: "japan", MiddleCode: "miyagi", SmallCode: "sendai", DetailCode: "A",
		LargeName: "日本", MiddleName: "宮城県", SmallName: "仙台", DetailName: "仙台駅東口・宮城野",
	}, recs[0])
	assert.Equal(t, "B", recs[1].DetailCode)
	assert.Equal(t, "sendai", recs[1].SmallCode)
}

func TestRead_SmallAreaWithoutDetailsStandsIn(t *testing.T) {
	recs, err := Read(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	// 未声明子级槽
	assert.Equal(t, "matsushima", recs[2].SmallCode)
	assert.Equal(t, "", recs[2].DetailCode)
	assert.Equal(t, "松島・塩釜", recs[2].DetailName)
	// 声明了子级槽但没有 detailClasses
	assert.Equal(t, "naruko", recs[3].SmallCode)
	assert.Equal(t, "", recs[3].DetailCode)
	assert.Equal(t, "鳴子", recs[3].DetailName)
}

func TestRead_MissingRequiredKeys(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"NoRoot", `{}`},
		{"NoLargeEntry", `{"areaClasses":{"largeClasses":[{"other":[]}]}}`},
		{"LargeCodeMissing", `{"areaClasses":{"largeClasses":[{"largeClass":[{"largeClassName":"日本"}]}]}}`},
		{"MiddleNameMissing", `{"areaClasses":{"largeClasses":[{"largeClass":[
			{"largeClassCode":"japan","largeClassName":"日本"},
			{"middleClasses":[{"middleClass":[{"middleClassCode":"x"}]}]}]}]}}`},
		{"SmallEmptyNode", `{"areaClasses":{"largeClasses":[{"largeClass":[
			{"largeClassCode":"japan","largeClassName":"日本"},
			{"middleClasses":[{"middleClass":[{"middleClassCode":"x","middleClassName":"X"},
			{"smallClasses":[{"smallClass":[]}]}]}]}]}]}}`},
		{"NotJSON", `{"areaClasses":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestRead_DetailWithoutCodeIsSkipped(t *testing.T) {
	doc := `{"areaClasses":{"largeClasses":[{"largeClass":[
		{"largeClassCode":"japan","largeClassName":"日本"},
		{"middleClasses":[{"middleClass":[{"middleClassCode":"m","middleClassName":"M"},
		{"smallClasses":[{"smallClass":[{"smallClassCode":"s","smallClassName":"S"},
		{"detailClasses":[{"detailClass":{"detailClassName":"無コード"}},{"detailClass":{"detailClassCode":"D","detailClassName":"有"}}]}]}]}]}]}]}]}}`
	recs, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "D", recs[0].DetailCode)
}

func TestRead_DetailWithoutNameKeepsCode(t *testing.T) {
	doc := `{"areaClasses":{"largeClasses":[{"largeClass":[
		{"largeClassCode":"japan","largeClassName":"日本"},
		{"middleClasses":[{"middleClass":[{"middleClassCode":"m","middleClassName":"M"},
		{"smallClasses":[{"smallClass":[{"smallClassCode":"s","smallClassName":"S"},
		{"detailClasses":[{"detailClass":{"detailClassCode":"D1"}},{"detailClass":{"detailClassCode":"D2","detailClassName":null}}]}]}]}]}]}]}]}}`
	recs, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "D1", recs[0].DetailCode)
	assert.Equal(t, "", recs[0].DetailName)
	assert.Equal(t, "S", recs[0].SmallName)
	assert.Equal(t, "D2", recs[1].DetailCode)
}

func TestFlatten_DuplicateKeysKeepFirst(t *testing.T) {
	small := Node{Code: "s", Name: "S"}
	tree := []Node{{Code: "l", Name: "L", Children: []Node{
		{Code: "m", Name: "M", Children: []Node{small, {Code: "s", Name: "S2"}}},
	}}}
	recs := Flatten(tree)
	require.Len(t, recs, 1)
	assert.Equal(t, "S", recs[0].DetailName)
}

func TestRecord_KeyAndPath(t *testing.T) {
	r := Record{LargeCode: "japan", MiddleCode: "m", SmallCode: "s", LargeName: "日本", MiddleName: "M", SmallName: "S", DetailName: "S"}
	assert.Equal(t, "japan/m/s/", r.Key())
	assert.Equal(t, "日本 - M - S (S)", r.Path())
}
