package analysis

import "strings"

// SystemRole is sent as the system message of every narrative request.
const SystemRole = "You are a medical data analysis expert specializing in cardiovascular health."

const dataPlaceholder = "{{DATA}}"

const promptTemplate = `You are an expert Medical Data Analyst specializing in cardiovascular health. Analyze the following Heart Disease dataset:

{{DATA}}

Provide a comprehensive analysis in the following sections:

1. **EXECUTIVE SUMMARY** (3-4 sentences): Overview of the dataset and primary insights.

2. **KEY FINDINGS** (4-5 bullet points): Most important discoveries, patterns, and trends in the data.

3. **STATISTICAL OVERVIEW** (4-5 bullet points): Notable statistics about age distribution, gender distribution, cholesterol levels, blood pressure, heart rate, etc.

4. **RISK FACTORS IDENTIFIED** (4-5 bullet points): Common risk factors observed in patients with heart disease, correlations between variables.

5. **CLINICAL RECOMMENDATIONS** (4-5 bullet points): Professional recommendations based on the data for healthcare providers or further analysis needed.

Format your response EXACTLY as follows, with clear section headers:

## EXECUTIVE SUMMARY
[Your summary here]

## KEY FINDINGS
- [Finding 1]
- [Finding 2]
...

## STATISTICAL OVERVIEW
- [Stat 1]
- [Stat 2]
...

## RISK FACTORS IDENTIFIED
- [Risk factor 1]
- [Risk factor 2]
...

## CLINICAL RECOMMENDATIONS
- [Recommendation 1]
- [Recommendation 2]
...

Keep the analysis professional, data-driven, and clinically relevant.
`

// BuildPrompt embeds serialized table data into the instruction template.
func BuildPrompt(data string) string {
	return strings.Replace(promptTemplate, dataPlaceholder, strings.TrimRight(data, "\n"), 1)
}
