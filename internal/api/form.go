package api

const formTemplate = `<!DOCTYPE html>
<html>
<head>
  <title>RCM Staffing Benchmark Report</title>
  <style>
    body { font-family: Arial, sans-serif; max-width: 640px; margin: 40px auto; color: #1f2937; }
    h1 { color: #1e3a8a; }
    label { display: block; margin-top: 14px; font-weight: bold; }
    input, select { width: 100%; padding: 8px; margin-top: 4px; box-sizing: border-box; }
    button { margin-top: 20px; background: #1e3a8a; color: #fff; border: 0; padding: 12px 24px; border-radius: 5px; font-weight: bold; }
    .note { color: #6b7280; font-size: 0.9em; }
  </style>
</head>
<body>
  <h1>RCM Staffing Benchmark Report</h1>
  <p class="note">Turnover cost, savings potential and ROI timeline from wage and staffing benchmarks.</p>
  <form action="/generate" method="post">
    <label for="hospital_name">Hospital name</label>
    <input id="hospital_name" name="hospital_name" required maxlength="200">

    <label for="hospital_beds">Licensed beds</label>
    <input id="hospital_beds" name="hospital_beds" type="number" min="1" max="10000" required>

    <label for="state">State (2-letter code, blank for national)</label>
    <input id="state" name="state" maxlength="2" pattern="[A-Za-z]{2}">

    <label for="recipient_name">Your name</label>
    <input id="recipient_name" name="recipient_name">

    <label for="recipient_email">Email</label>
    <input id="recipient_email" name="recipient_email" type="email">

    <button type="submit">Generate report</button>
  </form>
  <p class="note">v{{.Version}}</p>
</body>
</html>`
