package scraper

// announcementRowsSelector matches the rows of the equity announcements
// table once the page has rendered them.
const announcementRowsSelector = "#CFanncEquityTable tbody tr"

// countAnnouncementRowsScript reports how many rows the table currently has.
const countAnnouncementRowsScript = `document.querySelectorAll('#CFanncEquityTable tbody tr').length`

// extractAnnouncementsScript pulls every announcement row out of the page in
// one pass. Doing the extraction in-page is far cheaper than issuing a DOM
// query per cell over the devtools protocol.
const extractAnnouncementsScript = `(() => {
	const rows = document.querySelectorAll('#CFanncEquityTable tbody tr');
	const results = [];

	for (const row of rows) {
		const cells = row.querySelectorAll('td');
		if (cells.length < 7) {
			continue;
		}

		const symbolLink = cells[0].querySelector('a');
		const detailsSpan = cells[3].querySelector('span.content.eclipse');
		const attachmentLink = cells[4].querySelector('a');
		const attachmentSize = cells[4].querySelector('p');
		const xbrlLink = cells[5].querySelector('a');
		const dateLink = cells[6].querySelector('a');

		results.push({
			symbol: cells[0].textContent.trim(),
			symbol_link: symbolLink ? symbolLink.href : '',
			company_name: cells[1].textContent.trim(),
			subject: cells[2].textContent.trim(),
			details: detailsSpan ? detailsSpan.textContent.trim() : cells[3].textContent.trim(),
			attachment_url: attachmentLink ? attachmentLink.href : '',
			attachment_size: attachmentSize ? attachmentSize.textContent.trim() : '',
			xbrl_url: xbrlLink ? xbrlLink.href : '',
			broadcast_date: dateLink ? dateLink.textContent.trim() : cells[6].textContent.trim(),
		});
	}

	return results;
})()`
